package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// ImagePath es la referencia al archivo en el almacén de imágenes; UnitID y CategoryID
// quedan vacíos cuando el nombre enviado no resolvió a ningún registro.
type Product struct {
	ID         string
	Name       string
	Details    string
	Stock      int
	UnitPrice  decimal.Decimal
	ComboPrice decimal.NullDecimal // precio por combo, opcional
	ImagePath  string
	UnitID     string
	CategoryID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
