package entity

// Category categoría de productos.
type Category struct {
	ID   string
	Name string
}
