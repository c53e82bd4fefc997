package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestComboCost_SumaCompuestos(t *testing.T) {
	got := inventory.ComboCost([]inventory.WeightedInput{
		{UnitCost: d("2.5"), Quantity: d("2")},
		{UnitCost: d("4"), Quantity: d("1")},
	}, opts)
	assert.True(t, got.Equal(d("9")))
}

func TestSuppliedCost_RendimientoCeroEsUno(t *testing.T) {
	got := inventory.SuppliedCost([]inventory.WeightedInput{{UnitCost: d("5"), Quantity: d("2")}}, nil, decimal.Zero, opts)
	assert.True(t, got.Equal(d("10")))
}

func TestRecipeUnitCost_DivideEntreRendimiento(t *testing.T) {
	got := inventory.RecipeUnitCost([]inventory.WeightedInput{
		{UnitCost: d("6"), Quantity: d("2")},
		{UnitCost: d("1"), Quantity: d("8")},
	}, d("4"), opts)
	assert.True(t, got.Equal(d("5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Disponibilidad de combos
// ──────────────────────────────────────────────────────────────────────────────

func TestDisponibility_MinimoEntreComponentes(t *testing.T) {
	got := inventory.Disponibility([]inventory.ComposedStock{
		{Required: d("2"), Available: d("5"), StockLimit: true},
		{Required: d("3"), Available: d("9"), StockLimit: true},
	})
	if assert.NotNil(t, got) {
		assert.True(t, got.Equal(d("2")), "min(floor(5/2), floor(9/3)) = 2, got %s", got)
	}
}

func TestDisponibility_ComposicionVaciaEsCero(t *testing.T) {
	got := inventory.Disponibility(nil)
	if assert.NotNil(t, got) {
		assert.True(t, got.IsZero())
	}
}

func TestDisponibility_SinLimiteEsIlimitada(t *testing.T) {
	got := inventory.Disponibility([]inventory.ComposedStock{{Required: d("1"), Available: d("0")}})
	assert.Nil(t, got)
}

func TestDisponibility_ComponenteInsuficienteDeshabilita(t *testing.T) {
	got := inventory.Disponibility([]inventory.ComposedStock{
		{Required: d("2"), Available: d("1"), StockLimit: true},
		{Required: d("1"), Available: d("-4"), StockLimit: true},
	})
	if assert.NotNil(t, got) {
		assert.True(t, got.IsZero())
	}
}

func TestSameAvailability(t *testing.T) {
	two := d("2")
	assert.True(t, inventory.SameAvailability(nil, nil))
	assert.False(t, inventory.SameAvailability(&two, nil))
	assert.True(t, inventory.SameAvailability(&two, &two))
}
