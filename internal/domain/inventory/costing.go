package inventory

import (
	"github.com/shopspring/decimal"
)

// WeightedInput costo unitario de un componente y la cantidad que se consume.
type WeightedInput struct {
	UnitCost decimal.Decimal
	Quantity decimal.Decimal
}

// ComboCost suma costo × cantidad de los productos compuestos.
func ComboCost(items []WeightedInput, opts CostOptions) decimal.Decimal {
	return RoundCost(sumWeighted(items), opts)
}

// SuppliedCost (Σ insumo.costo × cantidad + Σ costos fijos) / rendimiento.
func SuppliedCost(supplies []WeightedInput, fixed []decimal.Decimal, yield decimal.Decimal, opts CostOptions) decimal.Decimal {
	total := sumWeighted(supplies)
	for _, f := range fixed {
		total = total.Add(f)
	}
	if yield.LessThanOrEqual(decimal.Zero) {
		yield = decimal.NewFromInt(1)
	}
	return RoundCost(total.DivRound(yield, opts.Precision+8), opts)
}

// RecipeUnitCost Σ materiaPrima.cantidad × materiaPrima.costo / rendimiento de la receta.
func RecipeUnitCost(raws []WeightedInput, performance decimal.Decimal, opts CostOptions) decimal.Decimal {
	return SuppliedCost(raws, nil, performance, opts)
}

func sumWeighted(items []WeightedInput) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitCost.Mul(it.Quantity))
	}
	return total
}
