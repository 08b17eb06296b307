package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

// DefaultHashCost costo bcrypt para contraseñas nuevas.
const DefaultHashCost = 12

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	tokens   *TokenService
	hashCost int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, roleRepo repository.RoleRepository, tokens *TokenService) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, roleRepo: roleRepo, tokens: tokens, hashCost: DefaultHashCost}
}

// WithHashCost cambia el costo bcrypt (tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithHashCost(cost int) *AuthUseCase {
	uc.hashCost = cost
	return uc
}

// Register crea un usuario con el rol "client", hashea el password con bcrypt y devuelve un token.
// Cédula y email son únicos: ErrCivilIDAlreadyExists / ErrEmailAlreadyExists.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := validateRegister(&in); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByCivilID(ctx, in.CivilID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCivilIDAlreadyExists
	}
	existing, err = uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	role, err := uc.roleRepo.GetByName(ctx, entity.RoleClient)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("rol %q no configurado: %w", entity.RoleClient, domain.ErrNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		CivilID:      in.CivilID,
		Name:         in.Name,
		LastName:     in.LastName,
		Age:          in.Age,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return uc.grant(user)
}

// Login verifica email/password y emite un token.
// Email desconocido: ErrUserNotFound. Password incorrecto: ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return uc.grant(user)
}

func (uc *AuthUseCase) grant(user *entity.User) (*dto.AuthResponse, error) {
	token, err := uc.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return nil, fmt.Errorf("emitir token: %w", err)
	}
	return &dto.AuthResponse{Auth: true, Token: &token}, nil
}

func validateRegister(in *dto.RegisterRequest) error {
	in.CivilID = strings.TrimSpace(in.CivilID)
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

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
	if in.Password == "" {
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
