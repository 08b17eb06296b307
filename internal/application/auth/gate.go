package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

// RoleCheckMode selecciona la comparación del gate.
type RoleCheckMode string

const (
	// RoleCheckMatch admite solo cuando el rol del usuario es el requerido.
	RoleCheckMatch RoleCheckMode = "match"
	// RoleCheckLegacy reproduce la comparación invertida del sistema anterior:
	// admite cuando el rol del usuario es distinto del requerido.
	RoleCheckLegacy RoleCheckMode = "legacy"
)

// ParseRoleCheckMode convierte el valor de configuración.
func ParseRoleCheckMode(s string) (RoleCheckMode, error) {
	switch RoleCheckMode(s) {
	case RoleCheckMatch, RoleCheckLegacy:
		return RoleCheckMode(s), nil
	}
	return "", fmt.Errorf("modo de verificación de rol desconocido: %q", s)
}

// RoleAdmits decide si un usuario con userRoleID pasa un gate que exige requiredRoleID.
func RoleAdmits(userRoleID, requiredRoleID string, mode RoleCheckMode) bool {
	if userRoleID == "" || requiredRoleID == "" {
		return false
	}
	same := userRoleID == requiredRoleID
	if mode == RoleCheckLegacy {
		return !same
	}
	return same
}

// Gate verifica que el usuario autenticado tenga el rol de personal requerido.
type Gate struct {
	users repository.UserRepository
	roles repository.RoleRepository
	mode  RoleCheckMode
}

// NewGate construye el gate de roles.
func NewGate(users repository.UserRepository, roles repository.RoleRepository, mode RoleCheckMode) *Gate {
	return &Gate{users: users, roles: roles, mode: mode}
}

// Authorize devuelve nil si userID puede acceder a rutas de roleName.
// Usuario o rol inexistente: domain.ErrNotFound. Fallo de consulta o rol distinto: domain.ErrUnauthorized.
func (g *Gate) Authorize(ctx context.Context, userID, roleName string) error {
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if user == nil {
		return domain.ErrNotFound
	}
	role, err := g.roles.GetByNameAndType(ctx, roleName, entity.RoleTypeStaff)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if role == nil {
		return domain.ErrNotFound
	}
	if !RoleAdmits(user.RoleID, role.ID, g.mode) {
		return domain.ErrUnauthorized
	}
	return nil
}
