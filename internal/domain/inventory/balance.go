package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ApplyDelta suma qty (con signo) al balance y a la variación indicada.
// Devuelve true cuando la cantidad del balance queda exactamente en cero sin variaciones pendientes
// y la fila debe eliminarse.
// No impide cantidades negativas: el déficit se representa como cantidad negativa.
func ApplyDelta(row *entity.StockAreaProduct, variationID *string, qty decimal.Decimal) bool {
	row.Quantity = row.Quantity.Add(qty)
	if variationID != nil {
		idx := -1
		for i := range row.Variations {
			if row.Variations[i].VariationID == *variationID {
				idx = i
				break
			}
		}
		if idx < 0 {
			row.Variations = append(row.Variations, entity.StockAreaVariation{VariationID: *variationID})
			idx = len(row.Variations) - 1
		}
		row.Variations[idx].Quantity = row.Variations[idx].Quantity.Add(qty)
		if row.Variations[idx].Quantity.IsZero() {
			row.Variations = append(row.Variations[:idx], row.Variations[idx+1:]...)
		}
	}
	return row.Quantity.IsZero() && len(row.Variations) == 0
}

// VariationQuantity devuelve la cantidad de una variación en el balance.
func VariationQuantity(row *entity.StockAreaProduct, variationID string) decimal.Decimal {
	for _, v := range row.Variations {
		if v.VariationID == variationID {
			return v.Quantity
		}
	}
	return decimal.Zero
}
