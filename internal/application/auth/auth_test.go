package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/produmax-api/internal/application/auth"
	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/testutil"
)

func newTokens() *auth.TokenService {
	return auth.NewTokenService(auth.JWTConfig{Secret: "secreto-de-prueba", ExpMinutes: 60, Issuer: "produmax-test"})
}

// ── tokens ───────────────────────────────────────────────────────────────────

func TestTokenService_VerifyRecuperaUserID(t *testing.T) {
	tokens := newTokens()
	tok, err := tokens.Issue("u-1", "Ana")
	require.NoError(t, err)

	userID, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestTokenService_ExpiradoEsUnauthorized(t *testing.T) {
	tokens := newTokens().WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	tok, err := tokens.Issue("u-1", "Ana")
	require.NoError(t, err)

	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_OtroSecretoEsUnauthorized(t *testing.T) {
	tok, err := auth.NewTokenService(auth.JWTConfig{Secret: "otro", ExpMinutes: 60}).Issue("u-1", "Ana")
	require.NoError(t, err)

	_, err = newTokens().Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = newTokens().Verify("basura")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ── gate ─────────────────────────────────────────────────────────────────────

func TestRoleAdmits(t *testing.T) {
	cases := []struct {
		name           string
		user, required string
		mode           auth.RoleCheckMode
		want           bool
	}{
		{"match igual", "r-admin", "r-admin", auth.RoleCheckMatch, true},
		{"match distinto", "r-client", "r-admin", auth.RoleCheckMatch, false},
		{"legacy igual", "r-admin", "r-admin", auth.RoleCheckLegacy, false},
		{"legacy distinto", "r-client", "r-admin", auth.RoleCheckLegacy, true},
		{"sin rol", "", "r-admin", auth.RoleCheckLegacy, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, auth.RoleAdmits(c.user, c.required, c.mode))
		})
	}
}

func TestParseRoleCheckMode(t *testing.T) {
	m, err := auth.ParseRoleCheckMode("legacy")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCheckLegacy, m)

	_, err = auth.ParseRoleCheckMode("otro")
	assert.Error(t, err)
}

func TestGate_Authorize(t *testing.T) {
	store := testutil.NewStore()
	admin := testutil.NewUserBuilder().AsAdmin().Build(store)
	client := testutil.NewUserBuilder().Build(store)
	gate := auth.NewGate(store.Users(), store.Roles(), auth.RoleCheckMatch)
	ctx := context.Background()

	assert.NoError(t, gate.Authorize(ctx, admin.ID, "admin"))
	assert.ErrorIs(t, gate.Authorize(ctx, client.ID, "admin"), domain.ErrUnauthorized)
	assert.ErrorIs(t, gate.Authorize(ctx, "no-existe", "admin"), domain.ErrNotFound)
	assert.ErrorIs(t, gate.Authorize(ctx, admin.ID, "supervisor"), domain.ErrNotFound, "rol inexistente")
	assert.ErrorIs(t, gate.Authorize(ctx, admin.ID, "client"), domain.ErrNotFound, "client no es rol de personal")
}

// ── registro y login ─────────────────────────────────────────────────────────

func newAuthUseCase(store *testutil.Store) *auth.AuthUseCase {
	return auth.NewAuthUseCase(store.Users(), store.Roles(), newTokens()).WithHashCost(bcrypt.MinCost)
}

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		CivilID: "001", Name: "Ana", LastName: "Pérez", Age: 30,
		Email: "A@X.com ", Password: "secreto123", Phone: "3001234567",
	}
}

func TestAuthUseCase_RegisterAsignaRolClienteYHashea(t *testing.T) {
	store := testutil.NewStore()
	uc := newAuthUseCase(store)

	out, err := uc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.True(t, out.Auth)
	require.NotNil(t, out.Token)

	u, err := store.Users().GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u, "el email se guarda normalizado")
	assert.Equal(t, testutil.ClientRoleID, u.RoleID)
	assert.NotEqual(t, "secreto123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secreto123")))

	userID, err := newTokens().Verify(*out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestAuthUseCase_RegisterDuplicados(t *testing.T) {
	store := testutil.NewStore()
	uc := newAuthUseCase(store)
	_, err := uc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, domain.ErrCivilIDAlreadyExists)

	other := validRegister()
	other.CivilID = "002"
	_, err = uc.Register(context.Background(), other)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestAuthUseCase_RegisterValidaCampos(t *testing.T) {
	uc := newAuthUseCase(testutil.NewStore())
	mutations := map[string]func(*dto.RegisterRequest){
		"sin ci":       func(r *dto.RegisterRequest) { r.CivilID = " " },
		"sin password": func(r *dto.RegisterRequest) { r.Password = "" },
		"edad cero":    func(r *dto.RegisterRequest) { r.Age = 0 },
		"email raro":   func(r *dto.RegisterRequest) { r.Email = "no-es-email" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validRegister()
			mutate(&in)
			_, err := uc.Register(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAuthUseCase_Login(t *testing.T) {
	store := testutil.NewStore()
	uc := newAuthUseCase(store)
	_, err := uc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.True(t, out.Auth)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "a@x.com", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@x.com", Password: "x"})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}
