package repository

import (
	"context"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
)

// CatalogRepository contrato de lectura del catálogo usado por pedidos y productos.
// Un resultado (nil, nil) significa "sin coincidencia": el llamador decide si es
// vínculo opcional (queda sin asignar) u obligatorio (ErrNotFound).
type CatalogRepository interface {
	GetProductByID(ctx context.Context, id string) (*entity.Product, error)
	GetProductByName(ctx context.Context, name string) (*entity.Product, error)
	GetUnitByName(ctx context.Context, name string) (*entity.Unit, error)
	GetCategoryByName(ctx context.Context, name string) (*entity.Category, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}

// ProductRepository escritura de productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}
