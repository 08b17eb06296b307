package entity

// Clasificación de roles (columna type_user).
const (
	RoleTypeStaff    = 1
	RoleTypeCustomer = 2
)

// Nombres de los roles sembrados por las migraciones.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Role rol asignable a usuarios. Se referencia, nunca se posee.
type Role struct {
	ID       string
	Name     string
	TypeUser int
}
