package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/produmax-api/internal/application/auth"
	"github.com/jhoicas/produmax-api/internal/application/catalog"
	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/application/order"
	"github.com/jhoicas/produmax-api/internal/application/usecase"
	domainorder "github.com/jhoicas/produmax-api/internal/domain/order"
	"github.com/jhoicas/produmax-api/internal/infrastructure/observability"
	"github.com/jhoicas/produmax-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/produmax-api/internal/interfaces/http"
	"github.com/jhoicas/produmax-api/internal/testutil"
	"github.com/jhoicas/produmax-api/pkg/logger"
)

type fakeReceipts struct{}

func (fakeReceipts) RenderOrderReceipt(_ context.Context, data order.ReceiptData) ([]byte, error) {
	return []byte("%PDF-1.4 " + data.Order.ID), nil
}

type testAPI struct {
	app     *fiber.App
	store   *testutil.Store
	metrics *observability.Metrics
}

// newTestAPI arma el router completo sobre el Store en memoria.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := testutil.NewStore()
	tokens := newTokens()
	metrics := observability.NewMetrics()

	images, err := storage.NewLocalImageStore(t.TempDir(), "uploads")
	require.NoError(t, err)

	orderUC := order.NewOrderUseCase(store.Orders(), store.Users(), store.Catalog(), store, fakeReceipts{}, logger.Nop(),
		order.Config{ItemPolicy: domainorder.PolicyUpsert, ItemWorkers: 2}).WithMetrics(metrics)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.UseCommon(app, apphttp.CommonOptions{Log: logger.Nop(), Metrics: metrics})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    auth.NewAuthUseCase(store.Users(), store.Roles(), tokens).WithHashCost(bcrypt.MinCost),
		OrderUC:   orderUC,
		ProductUC: catalog.NewProductUseCase(store.Catalog(), store.Products(), images, logger.Nop(), 0),
		UserUC:    usecase.NewUserUseCase(store.Users(), store.Roles()).WithHashCost(bcrypt.MinCost),
		Tokens:    tokens,
		Gate:      auth.NewGate(store.Users(), store.Roles(), auth.RoleCheckMatch),
	})
	return &testAPI{app: app, store: store, metrics: metrics}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ── autenticación ────────────────────────────────────────────────────────────

func TestAPI_RegistroLoginYPedidoConClienteDesconocido(t *testing.T) {
	api := newTestAPI(t)
	register := dto.RegisterRequest{
		CivilID: "001", Name: "Ana", LastName: "Pérez", Age: 30,
		Email: "a@x.com", Password: "secreto123", Phone: "3001234567",
	}

	resp := api.do(t, http.MethodPost, "/api/auth/register", "", register)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decode[dto.AuthResponse](t, resp)
	assert.True(t, reg.Auth)
	require.NotNil(t, reg.Token)

	resp = api.do(t, http.MethodPost, "/api/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "cédula repetida")
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.AuthResponse](t, resp)
	assert.True(t, login.Auth)
	require.NotNil(t, login.Token)

	resp = api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "otra"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	raw := decode[map[string]any](t, resp)
	assert.Equal(t, false, raw["auth"])
	assert.Contains(t, raw, "token")
	assert.Nil(t, raw["token"], "token es null cuando auth es false")

	resp = api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@x.com", Password: "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)
	resp = api.do(t, http.MethodPost, "/api/orders", tokenFor(t, admin), dto.OrderRequest{
		Address: "Calle 1", Neigh: "Centro", State: "pendiente", ClientCI: "999",
		Details: []dto.OrderItemInput{{ProductID: "P1", Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	assert.Zero(t, api.store.OrderCount())
}

func TestAPI_RegistroInvalido_Retorna400(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
	resp.Body.Close()
}

// ── pedidos ──────────────────────────────────────────────────────────────────

func TestAPI_CicloDeVidaDelPedido(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)
	client := testutil.NewUserBuilder().WithCivilID("1001").Build(api.store)
	testutil.SeedProducts(api.store, "P1", "P2", "P3")
	adminTok, clientTok := tokenFor(t, admin), tokenFor(t, client)

	body := dto.OrderRequest{
		Address: "Calle 1", Neigh: "Centro", State: "pendiente", ClientCI: "1001",
		Details: []dto.OrderItemInput{{ProductID: "P1", Quantity: 2}, {ProductID: "P2", Quantity: 1}, {ProductID: "NOPE", Quantity: 1}},
	}

	resp := api.do(t, http.MethodPost, "/api/orders", clientTok, body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "crear exige rol admin")
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/orders", adminTok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.OrderEnvelope](t, resp)
	assert.Equal(t, client.ID, created.Order.ClientID)
	require.Len(t, created.FailedItems, 1)
	assert.Equal(t, "NOPE", created.FailedItems[0].ProductID)
	id := created.Order.ID
	assert.Equal(t, 1.0, api.metrics.OrdersWritten("create"))
	assert.Equal(t, 1.0, api.metrics.LineItemFailures("create"))

	resp = api.do(t, http.MethodGet, "/api/orders/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "la lectura del pedido es pública")
	got := decode[dto.OrderEnvelope](t, resp)
	assert.Equal(t, "pendiente", got.Order.State)

	resp = api.do(t, http.MethodGet, "/api/orders/"+id+"/items", clientTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.OrderItemsResponse](t, resp).Items, 2)

	body.State = "entregado"
	body.Details = []dto.OrderItemInput{{ProductID: "P1", Quantity: 5}, {ProductID: "P3", Quantity: 1}}
	resp = api.do(t, http.MethodPut, "/api/orders/"+id, adminTok, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.OrderEnvelope](t, resp)
	assert.Equal(t, "entregado", updated.Order.State)
	assert.Equal(t, map[string]int{"P1": 5, "P2": 1, "P3": 1}, api.store.ItemsOf(id))

	resp = api.do(t, http.MethodGet, "/api/orders?limit=10", clientTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.OrderListResponse](t, resp)
	assert.Len(t, list.Orders, 1)
	assert.Equal(t, 10, list.Page.Limit)

	resp = api.do(t, http.MethodGet, "/api/orders/"+id+"/receipt", clientTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdf, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	resp = api.do(t, http.MethodDelete, "/api/orders/"+id, adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, api.store.ItemsOf(id))

	resp = api.do(t, http.MethodGet, "/api/orders/"+id, clientTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodDelete, "/api/orders/"+id, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_PedidosLecturaPublicaEscrituraConToken(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/orders", "", dto.OrderRequest{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/api/orders/"+uuid.New().String()+"/receipt", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el comprobante lleva datos del cliente")
	resp.Body.Close()
}

func TestAPI_PedidoAtomicoConLineaInvalida_Retorna400(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)
	testutil.NewUserBuilder().WithCivilID("1001").Build(api.store)
	testutil.SeedProducts(api.store, "P1")

	resp := api.do(t, http.MethodPost, "/api/orders", tokenFor(t, admin), dto.OrderRequest{
		Address: "Calle 1", Neigh: "Centro", State: "pendiente", ClientCI: "1001", Atomic: true,
		Details: []dto.OrderItemInput{{ProductID: "P1", Quantity: 0}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.Zero(t, api.store.OrderCount())
}

func TestAPI_CuerpoMalformado_Retorna400(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, admin))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, resp))
	resp.Body.Close()
}

// ── productos ────────────────────────────────────────────────────────────────

func productForm(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (a *testAPI) doForm(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAPI_ProductoMultipart(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)
	adminTok := tokenFor(t, admin)
	fields := map[string]string{"name": "Arroz", "stock": "5", "unitPrice": "2500", "details": "Bolsa"}

	body, ct := productForm(t, fields, "arroz.gif", []byte("GIF89a"))
	resp := api.doForm(t, http.MethodPost, "/api/products", adminTok, body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "extensión no permitida")
	resp.Body.Close()

	body, ct = productForm(t, fields, "arroz.png", []byte("\x89PNG"))
	resp = api.doForm(t, http.MethodPost, "/api/products", "", body, ct)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	body, ct = productForm(t, fields, "arroz.png", []byte("\x89PNG"))
	resp = api.doForm(t, http.MethodPost, "/api/products", adminTok, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.ProductEnvelope](t, resp)
	assert.Equal(t, "Arroz", created.Product.Name)
	assert.Equal(t, 5, created.Product.Stock)
	assert.Contains(t, created.Product.ImagePath, "uploads/")

	resp = api.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "el listado es público")
	assert.Len(t, decode[dto.ProductListResponse](t, resp).Products, 1)

	body, ct = productForm(t, map[string]string{"name": "Arroz Premium", "unitPrice": "3000"}, "", nil)
	resp = api.doForm(t, http.MethodPut, "/api/products/"+created.Product.ID, adminTok, body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode, "la imagen es opcional al actualizar")
	updated := decode[dto.ProductEnvelope](t, resp)
	assert.Equal(t, "Arroz Premium", updated.Product.Name)
	assert.Equal(t, created.Product.ImagePath, updated.Product.ImagePath)

	resp = api.do(t, http.MethodDelete, "/api/products/"+created.Product.ID, adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/api/products/"+created.Product.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// ── usuarios ─────────────────────────────────────────────────────────────────

func TestAPI_UsuariosSoloAdmin(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)
	client := testutil.NewUserBuilder().Build(api.store)

	resp := api.do(t, http.MethodGet, "/api/users", tokenFor(t, client), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodGet, "/api/users", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.UserListResponse](t, resp).Users, 2)

	resp = api.do(t, http.MethodGet, "/api/users/"+client.ID, tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw := decode[map[string]any](t, resp)
	user, _ := raw["user"].(map[string]any)
	assert.Equal(t, client.CivilID, user["ci"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")

	resp = api.do(t, http.MethodGet, "/api/users/no-existe", tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AdministracionDeUsuarios(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)
	client := testutil.NewUserBuilder().WithCivilID("1001").Build(api.store)
	adminTok := tokenFor(t, admin)

	body := dto.UserRequest{
		CivilID: "5005", Name: "Marta", LastName: "Ríos", Age: 35,
		Email: "marta@x.com", Password: "clave-marta", Phone: "3151112233", RoleName: "admin",
	}
	resp := api.do(t, http.MethodPost, "/api/users", tokenFor(t, client), body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/users", adminTok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.UserEnvelope](t, resp)
	assert.Equal(t, testutil.AdminRoleID, created.User.RoleID)

	resp = api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "marta@x.com", Password: "clave-marta"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el password se guardó hasheado y sirve para login")
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/users", adminTok, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CI_EXISTS", errorCode(t, resp))
	resp.Body.Close()

	body.Email = client.Email
	resp = api.do(t, http.MethodPut, "/api/users/"+created.User.ID, adminTok, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", errorCode(t, resp))
	resp.Body.Close()

	body.Email = "marta.rios@x.com"
	body.Password = ""
	body.RoleName = ""
	resp = api.do(t, http.MethodPut, "/api/users/"+created.User.ID, adminTok, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.UserEnvelope](t, resp)
	assert.Equal(t, "marta.rios@x.com", updated.User.Email)
	assert.Equal(t, testutil.AdminRoleID, updated.User.RoleID, "sin rolName conserva el rol")

	resp = api.do(t, http.MethodDelete, "/api/users/"+created.User.ID, adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodDelete, "/api/users/"+created.User.ID, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, resp))
	resp.Body.Close()
}

func TestAPI_EliminarClienteConPedidos_Retorna409(t *testing.T) {
	api := newTestAPI(t)
	admin := testutil.NewUserBuilder().AsAdmin().Build(api.store)
	testutil.NewUserBuilder().WithCivilID("1001").Build(api.store)
	adminTok := tokenFor(t, admin)

	resp := api.do(t, http.MethodPost, "/api/orders", adminTok, dto.OrderRequest{
		Address: "Calle 1", Neigh: "Centro", State: "pendiente", ClientCI: "1001",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.OrderEnvelope](t, resp)

	resp = api.do(t, http.MethodDelete, "/api/users/"+created.Order.ClientID, adminTok, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "IN_USE", errorCode(t, resp))
	resp.Body.Close()
}

// ── errores y cabeceras ──────────────────────────────────────────────────────

func TestAPI_CORSYCabecerasDeSeguridad(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://tienda.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "preflight")
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://tienda.local")
	resp, err = api.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
}

func TestAPI_RutaInexistenteUsaSobreDeError(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
	resp.Body.Close()
}
