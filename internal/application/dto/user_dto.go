package dto

import "time"

// RegisterRequest entrada para registro (auth). El rol asignado es siempre "client".
type RegisterRequest struct {
	CivilID  string `json:"ci"`
	Name     string `json:"name"`
	LastName string `json:"lastname"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse salida de registro y login. Token es null cuando auth es false.
type AuthResponse struct {
	Auth  bool    `json:"auth"`
	Token *string `json:"token"`
}

// UserRequest alta o edición de un usuario por un administrador.
// RoleName vacío asigna "client"; Password vacío en la edición conserva el actual.
type UserRequest struct {
	CivilID  string `json:"ci"`
	Name     string `json:"name"`
	LastName string `json:"lastname"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	RoleName string `json:"rolName"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CivilID   string    `json:"ci"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastname"`
	Age       int       `json:"age"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	RoleID    string    `json:"rol_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserEnvelope respuesta con un usuario.
type UserEnvelope struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Page  PageResponse   `json:"page"`
}
