package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetManyForUpdate bloquea las filas de producto (SELECT ... ORDER BY id FOR UPDATE).
	GetManyForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error)
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	UpdateTotalQuantity(ctx context.Context, productID string, qty decimal.Decimal) error
	UpdateAvailability(ctx context.Context, productID string, availability *decimal.Decimal) error
	UpdateFlags(ctx context.Context, productID string, flags entity.ProductFlags) error
	ListBelowAlert(ctx context.Context, businessID string) ([]*entity.Product, error)
}
