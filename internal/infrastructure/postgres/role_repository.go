package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo lectura de roles sembrados por migración.
type RoleRepo struct {
	db Querier
}

// NewRoleRepository construye el adaptador.
func NewRoleRepository(db Querier) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.findOne(ctx, `SELECT id, name, type_user FROM roles WHERE id = $1`, id)
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.findOne(ctx, `SELECT id, name, type_user FROM roles WHERE name = $1`, name)
}

func (r *RoleRepo) GetByNameAndType(ctx context.Context, name string, typeUser int) (*entity.Role, error) {
	return r.findOne(ctx, `SELECT id, name, type_user FROM roles WHERE name = $1 AND type_user = $2`, name, typeUser)
}

func (r *RoleRepo) findOne(ctx context.Context, query string, args ...any) (*entity.Role, error) {
	var role entity.Role
	err := r.db.QueryRow(ctx, query, args...).Scan(&role.ID, &role.Name, &role.TypeUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}
