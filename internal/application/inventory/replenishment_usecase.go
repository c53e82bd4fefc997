package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición del negocio a partir de los límites de alerta.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// GenerateReplenishmentList devuelve los productos bajo su límite de alerta con la cantidad
// sugerida de pedido, priorizados por déficit relativo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, op OperationContext) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.ListBelowAlert(ctx, op.BusinessID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		alert := *p.AlertLimit
		idealStock := alert.Mul(factor)
		suggestedQty := idealStock.Sub(p.TotalQuantity)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			ProductName:        p.Name,
			CurrentStock:       p.TotalQuantity,
			AlertLimit:         alert,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           p.AverageCost,
			EstimatedOrderCost: suggestedQty.Mul(p.AverageCost),
		})
	}

	// Mayor déficit relativo primero (1 - stock/alerta); desempate por costo estimado del pedido.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra, rb := deficitRatio(a), deficitRatio(b)
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func deficitRatio(s dto.ReplenishmentSuggestionDTO) decimal.Decimal {
	if !s.AlertLimit.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(s.CurrentStock.DivRound(s.AlertLimit, 8))
}
