package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation tipo de operación registrada en el libro de movimientos.
type Operation string

// Operaciones del libro de movimientos.
const (
	OperationEntry          Operation = "ENTRY"
	OperationOut            Operation = "OUT"
	OperationMovement       Operation = "MOVEMENT"
	OperationProcessed      Operation = "PROCESSED"
	OperationWaste          Operation = "WASTE"
	OperationAdjust         Operation = "ADJUST"
	OperationTransformation Operation = "TRANSFORMATION"
	OperationRemoved        Operation = "REMOVED"
	OperationSale           Operation = "SALE"
)

// Valid indica si la operación es conocida.
func (o Operation) Valid() bool {
	switch o {
	case OperationEntry, OperationOut, OperationMovement, OperationProcessed, OperationWaste,
		OperationAdjust, OperationTransformation, OperationRemoved, OperationSale:
		return true
	}
	return false
}

// StockMovement es una entrada inmutable del libro de movimientos.
// Solo Accountable y RemovedOperationID cambian después del commit (al revertir).
type StockMovement struct {
	ID          string
	BusinessID  string
	Operation   Operation
	Quantity    decimal.Decimal // con signo: negativo es una disminución
	ProductID   string
	VariationID *string
	AreaID      string
	MovedToID   *string // área destino en MOVEMENT
	ParentID    *string // enlaza la entrada derivada con su origen
	// CostBeforeOperation es el costo promedio del producto antes de la operación.
	CostBeforeOperation decimal.Decimal
	// AffectedCost indica que la fila re-promedió el costo del producto.
	AffectedCost       bool
	UnitCost           decimal.Decimal
	Price              *decimal.Decimal
	Accountable        bool
	RemovedOperationID *string
	EconomicCycleID    *string
	ProductionOrderID  *string
	Description        string
	CreatedBy          string
	CreatedAt          time.Time
}

// IsRoot indica si el movimiento es la raíz de su cadena.
func (m *StockMovement) IsRoot() bool { return m.ParentID == nil }

// Key devuelve la clave de balance afectada por el movimiento.
func (m *StockMovement) Key() BalanceKey {
	return BalanceKey{ProductID: m.ProductID, AreaID: m.AreaID}
}
