package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductForm campos de formulario (multipart) para crear/actualizar un producto.
// La imagen viaja aparte en el campo "image".
// Los precios llegan como texto y se validan en el caso de uso.
type ProductForm struct {
	Name         string `form:"name"`
	Details      string `form:"details"`
	Stock        int    `form:"stock"`
	UnitPrice    string `form:"unitPrice"`
	ComboPrice   string `form:"comboPrice"`
	UnitName     string `form:"unitName"`
	CategoryName string `form:"categoryName"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Details    string           `json:"details"`
	Stock      int              `json:"stock"`
	UnitPrice  decimal.Decimal  `json:"unitPrice"`
	ComboPrice *decimal.Decimal `json:"comboPrice,omitempty"`
	ImagePath  string           `json:"imagePath"`
	UnitID     string           `json:"unitId,omitempty"`
	CategoryID string           `json:"categoryId,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ProductEnvelope respuesta HTTP con un producto.
type ProductEnvelope struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Page     PageResponse      `json:"page"`
}
