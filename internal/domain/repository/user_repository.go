package repository

import (
	"context"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByCivilID(ctx context.Context, civilID string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	// Update y Delete devuelven domain.ErrUserNotFound si no hay fila.
	Update(ctx context.Context, user *entity.User) error
	// Delete devuelve domain.ErrInUse si el usuario tiene pedidos.
	Delete(ctx context.Context, id string) error
}
