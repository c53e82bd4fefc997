package inventory

import "github.com/shopspring/decimal"

// ComposedStock estado de un componente de combo para calcular disponibilidad.
type ComposedStock struct {
	Required   decimal.Decimal // cantidad que requiere el combo
	Available  decimal.Decimal // stock actual del componente
	StockLimit bool            // el componente limita la disponibilidad
}

// Disponibility calcula la cantidad máxima vendible de un combo:
// min(floor(disponible / requerido)) sobre los componentes con límite de stock.
// Devuelve nil (ilimitado) si ningún componente limita, y cero si la composición está vacía.
func Disponibility(items []ComposedStock) *decimal.Decimal {
	zero := decimal.Zero
	if len(items) == 0 {
		return &zero
	}
	var result *decimal.Decimal
	for _, it := range items {
		if !it.StockLimit {
			continue
		}
		var units decimal.Decimal
		switch {
		case it.Required.LessThanOrEqual(decimal.Zero):
			continue
		case it.Available.LessThanOrEqual(decimal.Zero):
			units = decimal.Zero
		default:
			units = it.Available.Div(it.Required).Floor()
		}
		if result == nil || units.LessThan(*result) {
			u := units
			result = &u
		}
	}
	return result
}

// SameAvailability compara dos disponibilidades (nil = ilimitada).
func SameAvailability(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
