package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName deja el nombre en forma NFC, sin espacios al borde y con espacios internos
// colapsados. Así "Kilo", " kilo " y "Kílo" compuesto/descompuesto resuelven igual;
// la comparación sin mayúsculas la hace el repositorio.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// SameName compara dos nombres normalizados sin distinguir mayúsculas.
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}
