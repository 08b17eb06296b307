package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, civil_id, name, last_name, age, email, password_hash, phone, role_id, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

// Create persiste un nuevo usuario. Cédula o email repetidos devuelven el error de dominio correspondiente.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.CivilID, user.Name, user.LastName, user.Age, user.Email, user.PasswordHash,
		user.Phone, user.RoleID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return userWriteError("insert user", err)
	}
	return nil
}

// Update sobrescribe el perfil, el hash y el rol. created_at no cambia.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	if !isUUID(user.ID) {
		return domain.ErrUserNotFound
	}
	query := `
		UPDATE users
		SET civil_id = $2, name = $3, last_name = $4, age = $5, email = $6,
		    password_hash = $7, phone = $8, role_id = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.CivilID, user.Name, user.LastName, user.Age, user.Email, user.PasswordHash,
		user.Phone, user.RoleID, user.UpdatedAt,
	)
	if err != nil {
		return userWriteError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete elimina el usuario. Con pedidos asociados la FK lo impide: domain.ErrInUse.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrUserNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func userWriteError(op string, err error) error {
	switch violatedConstraint(err) {
	case constraintUserCivilID:
		return domain.ErrCivilIDAlreadyExists
	case constraintUserEmail:
		return domain.ErrEmailAlreadyExists
	}
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.findOne(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByCivilID obtiene un usuario por cédula.
func (r *UserRepo) GetByCivilID(ctx context.Context, civilID string) (*entity.User, error) {
	return r.findOne(ctx, "get user by civil id", `SELECT `+userColumns+` FROM users WHERE civil_id = $1`, civilID)
}

// List lista usuarios ordenados por fecha de creación.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *UserRepo) findOne(ctx context.Context, op, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.CivilID, &u.Name, &u.LastName, &u.Age, &u.Email, &u.PasswordHash,
		&u.Phone, &u.RoleID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
