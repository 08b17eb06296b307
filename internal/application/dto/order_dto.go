package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemInput línea recibida en creación/actualización.
type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest cuerpo de POST y PUT de pedidos.
// Atomic=true escribe cabecera y líneas en una sola transacción.
type OrderRequest struct {
	Address  string           `json:"address"`
	Neigh    string           `json:"neigh"`
	State    string           `json:"state"`
	Total    decimal.Decimal  `json:"total"`
	ClientCI string           `json:"clientCI"`
	Details  []OrderItemInput `json:"details"`
	Atomic   bool             `json:"atomic"`
}

// OrderResponse cabecera del pedido.
type OrderResponse struct {
	ID        string          `json:"id"`
	Address   string          `json:"address"`
	Neigh     string          `json:"neigh"`
	State     string          `json:"state"`
	Total     decimal.Decimal `json:"total"`
	ClientID  string          `json:"clientId"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItemResponse línea del pedido.
type OrderItemResponse struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// LineItemFailure línea que no se pudo escribir en modo no atómico.
type LineItemFailure struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// OrderResult salida de crear/actualizar: cabecera + líneas fallidas.
type OrderResult struct {
	Order       OrderResponse     `json:"order"`
	FailedItems []LineItemFailure `json:"failed_items"`
}

// OrderEnvelope respuesta HTTP con un pedido.
type OrderEnvelope struct {
	Message     string            `json:"message"`
	Order       OrderResponse     `json:"order"`
	FailedItems []LineItemFailure `json:"failed_items,omitempty"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Page   PageResponse    `json:"page"`
}

// OrderItemsResponse líneas de un pedido.
type OrderItemsResponse struct {
	OrderID string              `json:"orderId"`
	Items   []OrderItemResponse `json:"items"`
}
