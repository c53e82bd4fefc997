package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// FloorPolicy regla de piso de stock para una operación que disminuye un balance.
type FloorPolicy int

const (
	// AllowDeficit permite que el balance quede negativo (déficit corregido luego con ADJUST).
	AllowDeficit FloorPolicy = iota
	// RequireAvailable exige stock suficiente antes de disminuir.
	RequireAvailable
)

// StockPolicy asigna una FloorPolicy a cada operación.
type StockPolicy map[entity.Operation]FloorPolicy

// DefaultStockPolicy la producción y las transformaciones exigen stock; el resto admite déficit.
func DefaultStockPolicy() StockPolicy {
	return StockPolicy{
		entity.OperationProcessed:      RequireAvailable,
		entity.OperationTransformation: RequireAvailable,
	}
}

// ParseStrictOperations construye la política a partir de una lista "PROCESSED,MOVEMENT".
// Una lista vacía devuelve DefaultStockPolicy.
func ParseStrictOperations(list []string) StockPolicy {
	policy := StockPolicy{}
	for _, raw := range list {
		op := entity.Operation(strings.ToUpper(strings.TrimSpace(raw)))
		if op.Valid() {
			policy[op] = RequireAvailable
		}
	}
	if len(policy) == 0 {
		return DefaultStockPolicy()
	}
	return policy
}

// For devuelve la política de la operación (AllowDeficit por defecto).
func (p StockPolicy) For(op entity.Operation) FloorPolicy {
	if p == nil {
		return AllowDeficit
	}
	return p[op]
}

// Allows indica si la operación puede restar qty de un balance con available unidades.
func (p StockPolicy) Allows(op entity.Operation, available, qty decimal.Decimal) bool {
	if p.For(op) == AllowDeficit {
		return true
	}
	return available.GreaterThanOrEqual(qty)
}
