package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository libro de movimientos: solo inserción, más la marca de reversión.
type StockMovementRepository interface {
	// Append asigna ID si está vacío y persiste el movimiento.
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// GetForUpdate bloquea la fila del movimiento (raíz de una reversión).
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	ListChildren(ctx context.Context, parentID string) ([]*entity.StockMovement, error)
	// MarkReversed fija accountable=false y removed_operation_id.
	MarkReversed(ctx context.Context, id, removedOperationID string) error
	// SumAccountable suma las cantidades de los movimientos contables de un producto en un área.
	SumAccountable(ctx context.Context, productID, areaID string) (decimal.Decimal, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
