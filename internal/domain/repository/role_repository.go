package repository

import (
	"context"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
)

// RoleRepository puerto de lectura de roles. Los roles se siembran con migraciones.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	// GetByNameAndType busca el rol por nombre filtrando por clasificación (type_user).
	GetByNameAndType(ctx context.Context, name string, typeUser int) (*entity.Role, error)
}
