package entity

import "time"

// User representa un usuario del sistema. Referencia exactamente un Role.
type User struct {
	ID           string
	CivilID      string // cédula, única
	Name         string
	LastName     string
	Age          int
	Email        string // único
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Phone        string
	RoleID       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
