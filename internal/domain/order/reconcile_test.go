package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/order"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenario base: el pedido tiene {P1:2, P2:3} y la actualización trae {P1:5, P3:1}.
// Con upsert P2 se conserva; con replace se elimina. En ambos casos quedan P1:5 y P3:1.
// ──────────────────────────────────────────────────────────────────────────────

func stored() []*entity.OrderItem {
	return []*entity.OrderItem{
		{ID: "i1", OrderID: "o1", ProductID: "P1", Quantity: 2},
		{ID: "i2", OrderID: "o1", ProductID: "P2", Quantity: 3},
	}
}

func incoming() []order.Line {
	return []order.Line{{ProductID: "P1", Quantity: 5}, {ProductID: "P3", Quantity: 1}}
}

// applyPlan devuelve el conjunto (producto -> cantidad) que queda tras aplicar el plan.
func applyPlan(existing []*entity.OrderItem, plan order.ReconcilePlan) map[string]int {
	out := make(map[string]int, len(existing)+len(plan.Writes))
	for _, it := range existing {
		out[it.ProductID] = it.Quantity
	}
	for _, c := range plan.Writes {
		out[c.Line.ProductID] = c.Line.Quantity
	}
	for _, id := range plan.Deletes {
		delete(out, id)
	}
	return out
}

func TestPlan_UpsertConservaLineasAusentes(t *testing.T) {
	plan := order.Plan(stored(), incoming(), order.PolicyUpsert)

	require.Len(t, plan.Writes, 2)
	assert.Equal(t, order.Change{Kind: order.ChangeUpdate, Line: order.Line{ProductID: "P1", Quantity: 5}}, plan.Writes[0])
	assert.Equal(t, order.Change{Kind: order.ChangeInsert, Line: order.Line{ProductID: "P3", Quantity: 1}}, plan.Writes[1])
	assert.Empty(t, plan.Deletes)

	assert.Equal(t, map[string]int{"P1": 5, "P2": 3, "P3": 1}, applyPlan(stored(), plan))
}

func TestPlan_ReplaceEliminaLineasAusentes(t *testing.T) {
	plan := order.Plan(stored(), incoming(), order.PolicyReplace)

	assert.Len(t, plan.Writes, 2)
	assert.Equal(t, []string{"P2"}, plan.Deletes)
	assert.Equal(t, map[string]int{"P1": 5, "P3": 1}, applyPlan(stored(), plan))
}

func TestPlan_CantidadIgualNoSeReescribe(t *testing.T) {
	plan := order.Plan(stored(), []order.Line{{ProductID: "P1", Quantity: 2}}, order.PolicyUpsert)

	assert.Empty(t, plan.Writes)
	assert.Equal(t, []order.Line{{ProductID: "P1", Quantity: 2}}, plan.Unchanged)
}

func TestPlan_PedidoSinLineasPrevias(t *testing.T) {
	plan := order.Plan(nil, incoming(), order.PolicyReplace)

	require.Len(t, plan.Writes, 2)
	for _, c := range plan.Writes {
		assert.Equal(t, order.ChangeInsert, c.Kind)
	}
	assert.Empty(t, plan.Deletes)
}

func TestPlan_ReplaceConPeticionVaciaEliminaTodo(t *testing.T) {
	plan := order.Plan(stored(), nil, order.PolicyReplace)
	assert.ElementsMatch(t, []string{"P1", "P2"}, plan.Deletes)
	assert.Empty(t, applyPlan(stored(), plan))
}

func TestMerge_SumaDuplicados(t *testing.T) {
	merged := order.Merge([]order.Line{
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P2", Quantity: 1},
		{ProductID: "P1", Quantity: 3},
	})
	assert.Equal(t, []order.Line{{ProductID: "P1", Quantity: 5}, {ProductID: "P2", Quantity: 1}}, merged)
}

func TestParsePolicy(t *testing.T) {
	p, err := order.ParsePolicy("replace")
	require.NoError(t, err)
	assert.Equal(t, order.PolicyReplace, p)

	_, err = order.ParsePolicy("merge")
	assert.Error(t, err)
}
