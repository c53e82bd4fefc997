package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var opts = inventory.CostOptions{Precision: 4}

func TestCostCalculator_PromedioPonderadoExacto(t *testing.T) {
	got := inventory.CostCalculator(d("10"), d("5"), d("10"), d("7"), opts)
	assert.True(t, got.Equal(d("6")), "10@5 + 10@7 debe dar 6, got %s", got)
}

func TestCostCalculator_SinStockTomaCostoEntrada(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("99"), d("4"), d("12.5"), opts)
	assert.True(t, got.Equal(d("12.5")))
}

func TestCostCalculator_StockNegativoTomaCostoEntrada(t *testing.T) {
	got := inventory.CostCalculator(d("-3"), d("8"), d("5"), d("10"), opts)
	assert.True(t, got.Equal(d("10")))
}

func TestCostCalculator_RedondeoAlFinal(t *testing.T) {
	// (1*1 + 2*2) / 3 = 1.6666...
	got := inventory.CostCalculator(d("1"), d("1"), d("2"), d("2"), inventory.CostOptions{Precision: 2})
	assert.Equal(t, "1.67", got.String())
}

func TestRoundCost_PisoCero(t *testing.T) {
	got := inventory.RoundCost(d("-1.5"), inventory.CostOptions{Precision: 2, ZeroFloor: true})
	assert.True(t, got.IsZero())
	got = inventory.RoundCost(d("-1.5"), inventory.CostOptions{Precision: 2})
	assert.True(t, got.Equal(d("-1.5")))
}

func TestTransformedUnitCost_RegloDeFraccion(t *testing.T) {
	// 2 unidades a costo 10 con fracción 0.5 producen 1 unidad a costo 10.
	got := inventory.TransformedUnitCost(d("2"), d("10"), d("0.5"), d("1"), opts)
	assert.True(t, got.Equal(d("10")), "got %s", got)
	assert.True(t, inventory.TransformedUnitCost(d("2"), d("10"), d("0.5"), decimal.Zero, opts).IsZero())
}

func TestCostCalculator_Idempotente(t *testing.T) {
	a := inventory.SuppliedCost([]inventory.WeightedInput{{UnitCost: d("3"), Quantity: d("2")}}, []decimal.Decimal{d("1")}, d("3"), opts)
	b := inventory.SuppliedCost([]inventory.WeightedInput{{UnitCost: d("3"), Quantity: d("2")}}, []decimal.Decimal{d("1")}, d("3"), opts)
	assert.True(t, a.Equal(b))
	assert.Equal(t, "2.3333", a.String())
}
