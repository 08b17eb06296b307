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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, address, neigh, state, total, client_id, created_at, updated_at`

// OrderRepo persistencia de cabeceras (orders) y líneas (order_items).
type OrderRepo struct {
	db Querier
}

// NewOrderRepository construye el adaptador. db puede ser el pool o una transacción.
func NewOrderRepository(db Querier) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create inserta la cabecera.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.Address, o.Neigh, o.State, o.Total, o.ClientID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if !isUUID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List lista cabeceras, más recientes primero.
func (r *OrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Update sobrescribe la cabecera.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET address = $2, neigh = $3, state = $4, total = $5, client_id = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, o.ID, o.Address, o.Neigh, o.State, o.Total, o.ClientID, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la cabecera; las líneas deben haberse eliminado antes.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateItem inserta una línea nueva. Un par (pedido, producto) repetido es ErrDuplicate.
func (r *OrderRepo) CreateItem(ctx context.Context, item *entity.OrderItem) error {
	query := `INSERT INTO order_items (id, order_id, product_id, quantity) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity)
	if err != nil {
		if violatedConstraint(err) == constraintOrderProduct {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// UpsertItem fija la cantidad de la línea (pedido, producto); última escritura gana.
func (r *OrderRepo) UpsertItem(ctx context.Context, item *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity) VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`
	if _, err := r.db.Exec(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity); err != nil {
		return fmt.Errorf("upsert order item: %w", err)
	}
	return nil
}

// DeleteItem elimina la línea (pedido, producto).
func (r *OrderRepo) DeleteItem(ctx context.Context, orderID, productID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1 AND product_id = $2`, orderID, productID)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	return nil
}

// DeleteItemsByOrder elimina todas las líneas del pedido.
func (r *OrderRepo) DeleteItemsByOrder(ctx context.Context, orderID string) (int64, error) {
	if !isUUID(orderID) {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete order items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListItems líneas del pedido ordenadas por producto.
func (r *OrderRepo) ListItems(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	if !isUUID(orderID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var list []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.Address, &o.Neigh, &o.State, &o.Total, &o.ClientID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
