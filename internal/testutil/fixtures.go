package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
)

// UserBuilder construye usuarios de prueba.
type UserBuilder struct {
	user entity.User
}

// NewUserBuilder usuario cliente con datos por defecto.
func NewUserBuilder() *UserBuilder {
	id := uuid.New().String()
	return &UserBuilder{user: entity.User{
		ID:        id,
		CivilID:   "CI-" + id[:8],
		Name:      "Ana",
		LastName:  "Pérez",
		Age:       30,
		Email:     "ana-" + id[:8] + "@example.com",
		Phone:     "3001234567",
		RoleID:    ClientRoleID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}}
}

func (b *UserBuilder) WithCivilID(ci string) *UserBuilder {
	b.user.CivilID = ci
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

// AsAdmin asigna el rol admin.
func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.user.RoleID = AdminRoleID
	return b
}

// Build guarda el usuario en el Store y lo devuelve.
func (b *UserBuilder) Build(s *Store) *entity.User {
	u := b.user
	s.PutUser(&u)
	return &u
}

// SeedProducts crea productos con los IDs dados, precio unitario 1000 y stock 10.
func SeedProducts(s *Store, ids ...string) []*entity.Product {
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		p := &entity.Product{
			ID:        id,
			Name:      "Producto " + id,
			Stock:     10,
			UnitPrice: decimal.NewFromInt(1000),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		s.PutProduct(p)
		out = append(out, p)
	}
	return out
}
