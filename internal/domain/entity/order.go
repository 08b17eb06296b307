package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order representa la cabecera de un pedido. State es un texto de negocio
// (p. ej. estado de entrega) que se persiste tal cual.
type Order struct {
	ID        string
	Address   string
	Neigh     string // barrio
	State     string
	Total     decimal.Decimal
	ClientID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
