package order

import (
	"fmt"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
)

// Policy define qué pasa con las líneas guardadas que no vienen en la actualización.
type Policy string

const (
	// PolicyUpsert actualiza o inserta las líneas recibidas y conserva las demás.
	PolicyUpsert Policy = "upsert"
	// PolicyReplace además elimina las líneas guardadas ausentes en la petición.
	PolicyReplace Policy = "replace"
)

// ParsePolicy convierte el valor de configuración en Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyUpsert, PolicyReplace:
		return Policy(s), nil
	}
	return "", fmt.Errorf("política de líneas desconocida: %q", s)
}

// Line cantidad pedida de un producto.
type Line struct {
	ProductID string
	Quantity  int
}

// ChangeKind tipo de escritura planeada para una línea.
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota + 1
	ChangeUpdate
)

// Change escritura de una línea por el par (pedido, producto).
type Change struct {
	Kind ChangeKind
	Line Line
}

// ReconcilePlan resultado de reconciliar las líneas guardadas con las recibidas.
type ReconcilePlan struct {
	Writes    []Change
	Unchanged []Line
	Deletes   []string // product IDs a eliminar (solo PolicyReplace)
}

// Merge agrupa las líneas por producto sumando cantidades; conserva el orden de primera aparición.
func Merge(lines []Line) []Line {
	idx := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// Plan calcula las escrituras necesarias para llevar existing a incoming según la política.
// Las líneas se identifican por producto; incoming debe venir ya agrupada (ver Merge).
func Plan(existing []*entity.OrderItem, incoming []Line, policy Policy) ReconcilePlan {
	stored := make(map[string]int, len(existing))
	for _, it := range existing {
		stored[it.ProductID] = it.Quantity
	}

	var plan ReconcilePlan
	seen := make(map[string]struct{}, len(incoming))
	for _, l := range incoming {
		seen[l.ProductID] = struct{}{}
		q, ok := stored[l.ProductID]
		switch {
		case !ok:
			plan.Writes = append(plan.Writes, Change{Kind: ChangeInsert, Line: l})
		case q != l.Quantity:
			plan.Writes = append(plan.Writes, Change{Kind: ChangeUpdate, Line: l})
		default:
			plan.Unchanged = append(plan.Unchanged, l)
		}
	}

	if policy == PolicyReplace {
		for _, it := range existing {
			if _, ok := seen[it.ProductID]; !ok {
				plan.Deletes = append(plan.Deletes, it.ProductID)
			}
		}
	}
	return plan
}
