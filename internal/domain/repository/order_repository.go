package repository

import (
	"context"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para la cabecera del pedido y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	// Delete elimina la cabecera; devuelve domain.ErrNotFound si no existía.
	Delete(ctx context.Context, id string) error

	// CreateItem inserta una línea nueva.
	CreateItem(ctx context.Context, item *entity.OrderItem) error
	// UpsertItem fija la cantidad de la línea (pedido, producto), insertándola si no existe.
	UpsertItem(ctx context.Context, item *entity.OrderItem) error
	DeleteItem(ctx context.Context, orderID, productID string) error
	// DeleteItemsByOrder elimina todas las líneas del pedido y devuelve cuántas borró.
	DeleteItemsByOrder(ctx context.Context, orderID string) (int64, error)
	ListItems(ctx context.Context, orderID string) ([]*entity.OrderItem, error)
}
