package entity

// OrderItem línea de pedido: cantidad de un producto dentro de un pedido.
// (order_id, product_id) es único; la línea nunca sobrevive a su pedido.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
}
