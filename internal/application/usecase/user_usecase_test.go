package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/application/usecase"
	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/testutil"
)

func TestUserUseCase_GetByID(t *testing.T) {
	s := testutil.NewStore()
	u := testutil.NewUserBuilder().WithCivilID("1001").Build(s)
	uc := usecase.NewUserUseCase(s.Users(), s.Roles())

	got, err := uc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "1001", got.CivilID)
	assert.Equal(t, testutil.ClientRoleID, got.RoleID)

	_, err = uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserUseCase_ListPaginado(t *testing.T) {
	s := testutil.NewStore()
	for _, ci := range []string{"1", "2", "3"} {
		testutil.NewUserBuilder().WithCivilID(ci).Build(s)
	}
	uc := usecase.NewUserUseCase(s.Users(), s.Roles())

	out, err := uc.List(context.Background(), dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, out.Users, 2)
	assert.Equal(t, "2", out.Users[0].CivilID)
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 1}, out.Page)
}

// ── administración ───────────────────────────────────────────────────────────

func newAdminUseCase(s *testutil.Store) *usecase.UserUseCase {
	return usecase.NewUserUseCase(s.Users(), s.Roles()).WithHashCost(bcrypt.MinCost)
}

func userRequest(ci, email string) dto.UserRequest {
	return dto.UserRequest{
		CivilID: ci, Name: "Luis", LastName: "Gómez", Age: 41,
		Email: email, Password: "clave-segura", Phone: "3109876543",
	}
}

func TestUserUseCase_CreateHasheaYAsignaRol(t *testing.T) {
	s := testutil.NewStore()
	uc := newAdminUseCase(s)

	in := userRequest("2001", "Luis@X.com")
	in.RoleName = "Admin"
	out, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, testutil.AdminRoleID, out.RoleID)
	assert.Equal(t, "luis@x.com", out.Email)

	stored, err := s.Users().GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "clave-segura", stored.PasswordHash, "nunca se guarda en claro")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-segura")))

	client, err := uc.Create(context.Background(), userRequest("2002", "otro@x.com"))
	require.NoError(t, err)
	assert.Equal(t, testutil.ClientRoleID, client.RoleID, "sin rolName queda como client")
}

func TestUserUseCase_CreateRolDesconocidoYDuplicados(t *testing.T) {
	s := testutil.NewStore()
	uc := newAdminUseCase(s)
	testutil.NewUserBuilder().WithCivilID("2001").Build(s)

	in := userRequest("3001", "a@x.com")
	in.RoleName = "supervisor"
	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), userRequest("2001", "b@x.com"))
	assert.ErrorIs(t, err, domain.ErrCivilIDAlreadyExists)

	_, err = uc.Create(context.Background(), userRequest("3002", "a@x.com"))
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), userRequest("3003", "A@X.COM"))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	noPassword := userRequest("3004", "c@x.com")
	noPassword.Password = ""
	_, err = uc.Create(context.Background(), noPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserUseCase_UpdateConservaPasswordSiVieneVacio(t *testing.T) {
	s := testutil.NewStore()
	uc := newAdminUseCase(s)
	created, err := uc.Create(context.Background(), userRequest("2001", "luis@x.com"))
	require.NoError(t, err)
	before, _ := s.Users().GetByID(context.Background(), created.ID)

	in := userRequest("2001", "luis.nuevo@x.com")
	in.Password = ""
	in.Phone = "3200000000"
	out, err := uc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "luis.nuevo@x.com", out.Email)
	assert.Equal(t, testutil.ClientRoleID, out.RoleID)

	after, _ := s.Users().GetByID(context.Background(), created.ID)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, "3200000000", after.Phone)

	in.Password = "otra-clave"
	in.RoleName = "admin"
	out, err = uc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, testutil.AdminRoleID, out.RoleID)
	after, _ = s.Users().GetByID(context.Background(), created.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(after.PasswordHash), []byte("otra-clave")))
}

func TestUserUseCase_UpdateConflictosYNoExiste(t *testing.T) {
	s := testutil.NewStore()
	uc := newAdminUseCase(s)
	other := testutil.NewUserBuilder().WithCivilID("9000").Build(s)
	created, err := uc.Create(context.Background(), userRequest("2001", "luis@x.com"))
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), created.ID, userRequest("9000", "luis@x.com"))
	assert.ErrorIs(t, err, domain.ErrCivilIDAlreadyExists)

	_, err = uc.Update(context.Background(), created.ID, userRequest("2001", other.Email))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Update(context.Background(), created.ID, userRequest("2001", "luis@x.com"))
	assert.NoError(t, err, "conservar la propia cédula y email no es conflicto")

	_, err = uc.Update(context.Background(), "no-existe", userRequest("2001", "luis@x.com"))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserUseCase_Delete(t *testing.T) {
	s := testutil.NewStore()
	uc := newAdminUseCase(s)
	u := testutil.NewUserBuilder().Build(s)

	require.NoError(t, uc.Delete(context.Background(), u.ID))
	_, err := uc.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, uc.Delete(context.Background(), u.ID), domain.ErrUserNotFound)
}

func TestUserUseCase_DeleteConPedidosEsInUse(t *testing.T) {
	s := testutil.NewStore()
	uc := newAdminUseCase(s)
	u := testutil.NewUserBuilder().Build(s)
	require.NoError(t, s.Orders().Create(context.Background(), &entity.Order{ID: "o-1", ClientID: u.ID, State: "pendiente"}))

	assert.ErrorIs(t, uc.Delete(context.Background(), u.ID), domain.ErrInUse)
}
