package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn devuelve error se hace rollback de cabecera y líneas.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orders repository.OrderRepository,
		catalog repository.CatalogRepository,
	) error) error
}

// Metrics contadores del agregado de pedidos.
type Metrics interface {
	OrderWritten(op string)
	LineItemFailed(op string)
}

type nopMetrics struct{}

func (nopMetrics) OrderWritten(string)   {}
func (nopMetrics) LineItemFailed(string) {}

// ReceiptLine línea del comprobante con el nombre del producto resuelto.
type ReceiptLine struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReceiptData datos necesarios para el comprobante PDF del pedido.
type ReceiptData struct {
	Order  *entity.Order
	Client *entity.User
	Lines  []ReceiptLine
}

// ReceiptRenderer genera el comprobante del pedido.
type ReceiptRenderer interface {
	RenderOrderReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}
