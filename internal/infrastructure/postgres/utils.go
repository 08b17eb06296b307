package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Nombres de constraints únicos definidos en migrations/.
const (
	constraintUserCivilID  = "users_civil_id_key"
	constraintUserEmail    = "users_email_key"
	constraintOrderProduct = "order_items_order_product_key"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// violatedConstraint devuelve el constraint de una violación de unicidad, o "".
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

// nullIfEmpty convierte "" en NULL para columnas de referencia opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUUID indica si id puede compararse con una columna UUID. Un id con otro formato
// no puede existir, así que las búsquedas lo tratan como ausente.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
