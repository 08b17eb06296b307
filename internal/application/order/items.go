package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/domain"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	domainorder "github.com/jhoicas/produmax-api/internal/domain/order"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

// splitLines separa las líneas con forma válida (agrupadas por producto) de las rechazadas.
func splitLines(details []dto.OrderItemInput) ([]domainorder.Line, []dto.LineItemFailure) {
	lines := make([]domainorder.Line, 0, len(details))
	rejected := make([]dto.LineItemFailure, 0)
	for _, d := range details {
		id := strings.TrimSpace(d.ProductID)
		switch {
		case id == "":
			rejected = append(rejected, dto.LineItemFailure{Quantity: d.Quantity, Reason: "productId es requerido"})
		case d.Quantity <= 0:
			rejected = append(rejected, dto.LineItemFailure{ProductID: id, Quantity: d.Quantity, Reason: "quantity debe ser mayor a 0"})
		default:
			lines = append(lines, domainorder.Line{ProductID: id, Quantity: d.Quantity})
		}
	}
	return domainorder.Merge(lines), rejected
}

// writeLines escribe cada línea de forma independiente con concurrencia acotada.
// Devuelve solo las que fallaron; el orden sigue al de changes.
func (uc *OrderUseCase) writeLines(ctx context.Context, op, orderID string, changes []domainorder.Change) []dto.LineItemFailure {
	fresh := op == "create"
	results := make([]error, len(changes))

	var g errgroup.Group
	g.SetLimit(uc.cfg.ItemWorkers)
	for i, c := range changes {
		g.Go(func() error {
			// el error se guarda por línea; no se cancela al resto
			results[i] = writeLine(ctx, uc.orders, uc.catalog, orderID, c, fresh)
			return nil
		})
	}
	_ = g.Wait()

	failed := make([]dto.LineItemFailure, 0)
	for i, err := range results {
		if err == nil {
			continue
		}
		failed = append(failed, dto.LineItemFailure{
			ProductID: changes[i].Line.ProductID,
			Quantity:  changes[i].Line.Quantity,
			Reason:    err.Error(),
		})
	}
	return failed
}

// writeLine verifica que el producto exista y escribe la línea (pedido, producto).
// Solo un pedido recién creado usa INSERT simple; en una actualización el plan se calculó
// sobre una lectura previa y otra petición pudo insertar el mismo par, así que se usa upsert.
func writeLine(
	ctx context.Context,
	orders repository.OrderRepository,
	catalog repository.CatalogRepository,
	orderID string,
	c domainorder.Change,
	fresh bool,
) error {
	p, err := catalog.GetProductByID(ctx, c.Line.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("producto %s: %w", c.Line.ProductID, domain.ErrNotFound)
	}
	item := &entity.OrderItem{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		ProductID: c.Line.ProductID,
		Quantity:  c.Line.Quantity,
	}
	if fresh && c.Kind == domainorder.ChangeInsert {
		return orders.CreateItem(ctx, item)
	}
	return orders.UpsertItem(ctx, item)
}
