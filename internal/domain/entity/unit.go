package entity

// Unit unidad de medida de un producto (kg, lb, unidad...).
type Unit struct {
	ID     string
	Name   string
	Symbol string
}
