package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	domainorder "github.com/jhoicas/produmax-api/internal/domain/order"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
	"github.com/jhoicas/produmax-api/pkg/logger"
)

// Config comportamiento del agregado.
type Config struct {
	ItemPolicy  domainorder.Policy
	ItemWorkers int
}

// OrderUseCase administra el agregado pedido: cabecera + líneas.
//
// En modo no atómico (por defecto) la cabecera se guarda primero y cada línea se escribe
// por separado; una línea fallida no deshace la cabecera ni las demás, y se reporta en
// FailedItems. Con Atomic=true todo corre en una transacción y cualquier fallo hace rollback.
type OrderUseCase struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	catalog  repository.CatalogRepository
	tx       TxRunner
	receipts ReceiptRenderer
	metrics  Metrics
	log      *logger.Logger
	cfg      Config
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	catalog repository.CatalogRepository,
	tx TxRunner,
	receipts ReceiptRenderer,
	log *logger.Logger,
	cfg Config,
) *OrderUseCase {
	if cfg.ItemWorkers <= 0 {
		cfg.ItemWorkers = 1
	}
	if cfg.ItemPolicy == "" {
		cfg.ItemPolicy = domainorder.PolicyUpsert
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		orders:   orders,
		users:    users,
		catalog:  catalog,
		tx:       tx,
		receipts: receipts,
		metrics:  nopMetrics{},
		log:      log.Named("orders"),
		cfg:      cfg,
	}
}

// WithMetrics asigna el recolector de métricas.
func (uc *OrderUseCase) WithMetrics(m Metrics) *OrderUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// Create resuelve el cliente por cédula, guarda la cabecera y escribe las líneas.
// Cliente inexistente: domain.ErrNotFound y no se escribe nada.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.OrderRequest) (*dto.OrderResult, error) {
	if err := validateHeader(&in); err != nil {
		return nil, err
	}
	valid, rejected := splitLines(in.Details)
	if in.Atomic && len(rejected) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, rejected[0].Reason)
	}

	client, err := uc.resolveClient(ctx, in.ClientCI)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	header := &entity.Order{
		ID:        uuid.New().String(),
		Address:   in.Address,
		Neigh:     in.Neigh,
		State:     in.State,
		Total:     in.Total,
		ClientID:  client.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	changes := make([]domainorder.Change, 0, len(valid))
	for _, l := range valid {
		changes = append(changes, domainorder.Change{Kind: domainorder.ChangeInsert, Line: l})
	}

	if in.Atomic {
		err := uc.tx.RunOrder(ctx, func(orders repository.OrderRepository, catalog repository.CatalogRepository) error {
			if err := orders.Create(ctx, header); err != nil {
				return err
			}
			for _, c := range changes {
				if err := writeLine(ctx, orders, catalog, header.ID, c, true); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		uc.metrics.OrderWritten("create")
		uc.log.Info().Str("order_id", header.ID).Int("items", len(changes)).Bool("atomic", true).Msg("pedido creado")
		return &dto.OrderResult{Order: toOrderResponse(header), FailedItems: []dto.LineItemFailure{}}, nil
	}

	if err := uc.orders.Create(ctx, header); err != nil {
		return nil, err
	}
	uc.metrics.OrderWritten("create")

	failed := append(rejected, uc.writeLines(ctx, "create", header.ID, changes)...)
	uc.reportFailures("create", header.ID, failed)
	uc.log.Info().Str("order_id", header.ID).Int("items", len(changes)).Int("failed_items", len(failed)).Msg("pedido creado")

	return &dto.OrderResult{Order: toOrderResponse(header), FailedItems: failed}, nil
}

// Get obtiene la cabecera del pedido.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(o)
	return &resp, nil
}

// List lista cabeceras con paginación.
func (uc *OrderUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.orders.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return &dto.OrderListResponse{Orders: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Items devuelve las líneas del pedido.
func (uc *OrderUseCase) Items(ctx context.Context, id string) (*dto.OrderItemsResponse, error) {
	if _, err := uc.find(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.orders.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.OrderItemsResponse{OrderID: id, Items: make([]dto.OrderItemResponse, 0, len(list))}
	for _, it := range list {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID: it.ID, OrderID: it.OrderID, ProductID: it.ProductID, Quantity: it.Quantity,
		})
	}
	return out, nil
}

// Update sobrescribe la cabecera y reconcilia las líneas por (pedido, producto) según la
// política configurada: upsert conserva las líneas ausentes, replace las elimina.
func (uc *OrderUseCase) Update(ctx context.Context, id string, in dto.OrderRequest) (*dto.OrderResult, error) {
	if err := validateHeader(&in); err != nil {
		return nil, err
	}
	valid, rejected := splitLines(in.Details)
	if in.Atomic && len(rejected) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, rejected[0].Reason)
	}

	client, err := uc.resolveClient(ctx, in.ClientCI)
	if err != nil {
		return nil, err
	}

	apply := func(o *entity.Order) {
		o.Address = in.Address
		o.Neigh = in.Neigh
		o.State = in.State
		o.Total = in.Total
		o.ClientID = client.ID
		o.UpdatedAt = time.Now()
	}

	if in.Atomic {
		var header *entity.Order
		err := uc.tx.RunOrder(ctx, func(orders repository.OrderRepository, catalog repository.CatalogRepository) error {
			o, err := orders.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if o == nil {
				return domain.ErrNotFound
			}
			apply(o)
			existing, err := orders.ListItems(ctx, id)
			if err != nil {
				return err
			}
			plan := domainorder.Plan(existing, valid, uc.cfg.ItemPolicy)
			for _, c := range plan.Writes {
				if err := writeLine(ctx, orders, catalog, id, c, false); err != nil {
					return err
				}
			}
			for _, productID := range plan.Deletes {
				if err := orders.DeleteItem(ctx, id, productID); err != nil {
					return err
				}
			}
			header = o
			return orders.Update(ctx, o)
		})
		if err != nil {
			return nil, err
		}
		uc.metrics.OrderWritten("update")
		uc.log.Info().Str("order_id", id).Bool("atomic", true).Msg("pedido actualizado")
		return &dto.OrderResult{Order: toOrderResponse(header), FailedItems: []dto.LineItemFailure{}}, nil
	}

	header, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(header)

	existing, err := uc.orders.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	plan := domainorder.Plan(existing, valid, uc.cfg.ItemPolicy)
	failed := append(rejected, uc.writeLines(ctx, "update", id, plan.Writes)...)
	for _, productID := range plan.Deletes {
		if err := uc.orders.DeleteItem(ctx, id, productID); err != nil {
			failed = append(failed, dto.LineItemFailure{ProductID: productID, Reason: "no se pudo eliminar: " + err.Error()})
		}
	}

	if err := uc.orders.Update(ctx, header); err != nil {
		return nil, err
	}
	uc.metrics.OrderWritten("update")
	uc.reportFailures("update", id, failed)
	uc.log.Info().Str("order_id", id).Int("writes", len(plan.Writes)).Int("deletes", len(plan.Deletes)).
		Int("failed_items", len(failed)).Msg("pedido actualizado")

	return &dto.OrderResult{Order: toOrderResponse(header), FailedItems: failed}, nil
}

// Delete elimina primero las líneas y luego la cabecera, en una transacción.
// Pedido inexistente: domain.ErrNotFound.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	var removed int64
	err := uc.tx.RunOrder(ctx, func(orders repository.OrderRepository, _ repository.CatalogRepository) error {
		n, err := orders.DeleteItemsByOrder(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return orders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.metrics.OrderWritten("delete")
	uc.log.Info().Str("order_id", id).Int64("items", removed).Msg("pedido eliminado")
	return nil
}

// Receipt genera el comprobante PDF del pedido.
func (uc *OrderUseCase) Receipt(ctx context.Context, id string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, errors.New("generador de comprobantes no configurado")
	}
	o, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	client, err := uc.users.GetByID(ctx, o.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &entity.User{ID: o.ClientID}
	}
	items, err := uc.orders.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	data := ReceiptData{Order: o, Client: client, Lines: make([]ReceiptLine, 0, len(items))}
	for _, it := range items {
		line := ReceiptLine{ProductName: it.ProductID, Quantity: it.Quantity}
		p, err := uc.catalog.GetProductByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			line.ProductName = p.Name
			line.UnitPrice = p.UnitPrice
			line.Subtotal = p.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		data.Lines = append(data.Lines, line)
	}
	return uc.receipts.RenderOrderReceipt(ctx, data)
}

func (uc *OrderUseCase) find(ctx context.Context, id string) (*entity.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id es requerido", domain.ErrInvalidInput)
	}
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (uc *OrderUseCase) resolveClient(ctx context.Context, civilID string) (*entity.User, error) {
	client, err := uc.users.GetByCivilID(ctx, civilID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("cliente %s: %w", civilID, domain.ErrNotFound)
	}
	return client, nil
}

func (uc *OrderUseCase) reportFailures(op, orderID string, failed []dto.LineItemFailure) {
	for _, f := range failed {
		uc.metrics.LineItemFailed(op)
		uc.log.Warn().Str("op", op).Str("order_id", orderID).Str("product_id", f.ProductID).
			Int("quantity", f.Quantity).Str("reason", f.Reason).Msg("línea de pedido no escrita")
	}
}

func validateHeader(in *dto.OrderRequest) error {
	in.Address = strings.TrimSpace(in.Address)
	in.Neigh = strings.TrimSpace(in.Neigh)
	in.State = strings.TrimSpace(in.State)
	in.ClientCI = strings.TrimSpace(in.ClientCI)

	var missing []string
	if in.Address == "" {
		missing = append(missing, "address")
	}
	if in.Neigh == "" {
		missing = append(missing, "neigh")
	}
	if in.State == "" {
		missing = append(missing, "state")
	}
	if in.ClientCI == "" {
		missing = append(missing, "clientCI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: campos requeridos: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if in.Total.IsNegative() {
		return fmt.Errorf("%w: total no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        o.ID,
		Address:   o.Address,
		Neigh:     o.Neigh,
		State:     o.State,
		Total:     o.Total,
		ClientID:  o.ClientID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
