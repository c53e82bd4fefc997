package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductionOrderRepository estado de manufactura por orden y producto.
type ProductionOrderRepository interface {
	// GetStateForUpdate devuelve (nil, nil) si la orden no planificó el producto.
	GetStateForUpdate(ctx context.Context, orderID, productID string) (*entity.ManufacturingState, error)
	SaveState(ctx context.Context, state *entity.ManufacturingState) error
}
