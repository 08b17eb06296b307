//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/produmax-api/internal/application/dto"
	apporder "github.com/jhoicas/produmax-api/internal/application/order"
	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	domainorder "github.com/jhoicas/produmax-api/internal/domain/order"
	"github.com/jhoicas/produmax-api/internal/infrastructure/migrate"
	"github.com/jhoicas/produmax-api/pkg/config"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("produmax_test"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrate.Up(ctx, dsn))

	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestIntegration_CicloDeVidaDelPedido(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	roles := NewRoleRepository(pool)
	catalog := NewCatalogRepository(pool)
	products := NewProductRepository(pool)
	orders := NewOrderRepository(pool)

	clientRole, err := roles.GetByNameAndType(ctx, entity.RoleClient, entity.RoleTypeCustomer)
	require.NoError(t, err)
	require.NotNil(t, clientRole)

	now := time.Now().UTC().Truncate(time.Microsecond)
	client := &entity.User{
		ID: uuid.New().String(), CivilID: "1001", Name: "Ana", Age: 30, Email: "ana@example.com",
		PasswordHash: "x", Phone: "300", RoleID: clientRole.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, users.Create(ctx, client))

	dup := *client
	dup.ID = uuid.New().String()
	dup.Email = "otra@example.com"
	assert.ErrorIs(t, users.Create(ctx, &dup), domain.ErrCivilIDAlreadyExists)

	kilo, err := catalog.GetUnitByName(ctx, " kilo ")
	require.NoError(t, err)
	require.NotNil(t, kilo, "las unidades se siembran por migración")

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.New().String()
		require.NoError(t, products.Create(ctx, &entity.Product{
			ID: ids[i], Name: "Producto " + ids[i][:8], Stock: 10, UnitPrice: decimal.NewFromInt(1200),
			UnitID: kilo.ID, CreatedAt: now, UpdatedAt: now,
		}))
	}

	uc := apporder.NewOrderUseCase(orders, users, catalog, NewTxRunner(pool), nil, nil,
		apporder.Config{ItemPolicy: domainorder.PolicyUpsert, ItemWorkers: 4})

	res, err := uc.Create(ctx, dto.OrderRequest{
		Address: "Calle 1", Neigh: "Centro", State: "pendiente", Total: decimal.NewFromInt(6000),
		ClientCI: "1001",
		Details:  []dto.OrderItemInput{{ProductID: ids[0], Quantity: 2}, {ProductID: ids[1], Quantity: 3}},
	})
	require.NoError(t, err)
	require.Empty(t, res.FailedItems)
	orderID := res.Order.ID

	_, err = uc.Update(ctx, orderID, dto.OrderRequest{
		Address: "Calle 1", Neigh: "Centro", State: "entregado", Total: decimal.NewFromInt(7200),
		ClientCI: "1001",
		Details:  []dto.OrderItemInput{{ProductID: ids[0], Quantity: 5}, {ProductID: ids[2], Quantity: 1}},
	})
	require.NoError(t, err)

	items, err := orders.ListItems(ctx, orderID)
	require.NoError(t, err)
	got := map[string]int{}
	for _, it := range items {
		got[it.ProductID] = it.Quantity
	}
	assert.Equal(t, map[string]int{ids[0]: 5, ids[1]: 3, ids[2]: 1}, got)

	// atómico con producto inexistente: nada queda guardado
	_, err = uc.Create(ctx, dto.OrderRequest{
		Address: "Calle 2", Neigh: "Norte", State: "pendiente", ClientCI: "1001", Atomic: true,
		Details: []dto.OrderItemInput{{ProductID: ids[0], Quantity: 1}, {ProductID: uuid.New().String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := orders.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, uc.Delete(ctx, orderID))
	o, err := orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, o)
	items, err = orders.ListItems(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
