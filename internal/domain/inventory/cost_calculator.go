package inventory

import "github.com/shopspring/decimal"

// CostOptions parámetros de redondeo y piso del costo.
type CostOptions struct {
	Precision int32 // decimales tras la coma (precission_after_coma)
	ZeroFloor bool  // el costo nunca baja de cero
}

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con StockActual <= 0 el nuevo costo es el costo de entrada. El redondeo se aplica una sola vez al final.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal, opts CostOptions) decimal.Decimal {
	var cost decimal.Decimal
	sum := stockActual.Add(cantEntrada)
	switch {
	case stockActual.LessThanOrEqual(decimal.Zero), sum.LessThanOrEqual(decimal.Zero):
		cost = costoEntrada
	default:
		num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
		cost = num.DivRound(sum, opts.Precision+8)
	}
	return RoundCost(cost, opts)
}

// RoundCost aplica el piso y la precisión configurada.
func RoundCost(cost decimal.Decimal, opts CostOptions) decimal.Decimal {
	if opts.ZeroFloor && cost.LessThan(decimal.Zero) {
		cost = decimal.Zero
	}
	return cost.Round(opts.Precision)
}

// TransformedUnitCost costo unitario que aporta una transformación al producto resultante:
// cantidadBase * costoBase * fracción / cantidadTransformada.
func TransformedUnitCost(baseQty, baseCost, fraction, transformedQty decimal.Decimal, opts CostOptions) decimal.Decimal {
	if transformedQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	total := baseQty.Mul(baseCost).Mul(fraction)
	return total.DivRound(transformedQty, opts.Precision+8)
}
