package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockAreaProductRepository puerto de la proyección de balances por área.
// Usado dentro de transacciones junto con StockMovementRepository.
type StockAreaProductRepository interface {
	// LockForUpdate bloquea las filas existentes de las claves dadas, ordenadas por id.
	LockForUpdate(ctx context.Context, keys []entity.BalanceKey) ([]*entity.StockAreaProduct, error)
	// Get devuelve (nil, nil) cuando no hay balance.
	Get(ctx context.Context, productID, areaID string) (*entity.StockAreaProduct, error)
	Save(ctx context.Context, row *entity.StockAreaProduct) error
	Delete(ctx context.Context, id string) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockAreaProduct, error)
	ListByArea(ctx context.Context, areaID string) ([]*entity.StockAreaProduct, error)
}
