package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/produmax-api/internal/application/auth"
	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

// UserUseCase administración de usuarios (rutas solo admin).
type UserUseCase struct {
	repo     repository.UserRepository
	roles    repository.RoleRepository
	hashCost int
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roles repository.RoleRepository) *UserUseCase {
	return &UserUseCase{repo: repo, roles: roles, hashCost: auth.DefaultHashCost}
}

// WithHashCost cambia el costo bcrypt.
func (uc *UserUseCase) WithHashCost(cost int) *UserUseCase {
	uc.hashCost = cost
	return uc
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return entityToUserResponse(user), nil
}

// List lista usuarios paginados.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	users, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{
		Users: make([]dto.UserResponse, 0, len(users)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, u := range users {
		out.Users = append(out.Users, *entityToUserResponse(u))
	}
	return out, nil
}

// Create da de alta un usuario con el rol indicado por nombre. El password se guarda con bcrypt.
func (uc *UserUseCase) Create(ctx context.Context, in dto.UserRequest) (*dto.UserResponse, error) {
	if err := validateUser(&in, true); err != nil {
		return nil, err
	}
	if err := uc.checkUnique(ctx, "", in); err != nil {
		return nil, err
	}
	roleID, err := uc.resolveRole(ctx, in.RoleName)
	if err != nil {
		return nil, err
	}
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		PasswordHash: hash,
		RoleID:       roleID,
		CreatedAt:    now,
	}
	applyProfile(user, in, now)
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// Update reemplaza el perfil del usuario. Password y rol solo cambian si vienen informados.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UserRequest) (*dto.UserResponse, error) {
	if err := validateUser(&in, false); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.checkUnique(ctx, user.ID, in); err != nil {
		return nil, err
	}
	if in.RoleName != "" {
		if user.RoleID, err = uc.resolveRole(ctx, in.RoleName); err != nil {
			return nil, err
		}
	}
	if in.Password != "" {
		if user.PasswordHash, err = uc.hash(in.Password); err != nil {
			return nil, err
		}
	}
	applyProfile(user, in, time.Now())
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// Delete elimina un usuario. Si tiene pedidos: domain.ErrInUse.
func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// checkUnique adelanta los conflictos de cédula y email; la base los vuelve a verificar.
func (uc *UserUseCase) checkUnique(ctx context.Context, selfID string, in dto.UserRequest) error {
	other, err := uc.repo.GetByCivilID(ctx, in.CivilID)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return domain.ErrCivilIDAlreadyExists
	}
	other, err = uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return domain.ErrEmailAlreadyExists
	}
	return nil
}

func (uc *UserUseCase) resolveRole(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = entity.RoleClient
	}
	role, err := uc.roles.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if role == nil {
		return "", fmt.Errorf("%w: rol %q desconocido", domain.ErrInvalidInput, name)
	}
	return role.ID, nil
}

func (uc *UserUseCase) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func applyProfile(u *entity.User, in dto.UserRequest, now time.Time) {
	u.CivilID = in.CivilID
	u.Name = in.Name
	u.LastName = in.LastName
	u.Age = in.Age
	u.Email = in.Email
	u.Phone = in.Phone
	u.UpdatedAt = now
}

func validateUser(in *dto.UserRequest, requirePassword bool) error {
	in.CivilID = strings.TrimSpace(in.CivilID)
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.RoleName = strings.TrimSpace(strings.ToLower(in.RoleName))

	var missing []string
	if in.CivilID == "" {
		missing = append(missing, "ci")
	}
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if requirePassword && in.Password == "" {
		missing = append(missing, "password")
	}
	if in.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: campos requeridos: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if in.Age <= 0 {
		return fmt.Errorf("%w: age debe ser positivo", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(in.Password) > 72 {
		return fmt.Errorf("%w: password demasiado largo", domain.ErrInvalidInput)
	}
	return nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CivilID:   u.CivilID,
		Name:      u.Name,
		LastName:  u.LastName,
		Age:       u.Age,
		Email:     u.Email,
		Phone:     u.Phone,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
