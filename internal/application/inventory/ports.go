package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/propagation"
	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Movements        repository.StockMovementRepository
	Balances         repository.StockAreaProductRepository
	Products         repository.ProductRepository
	ProductionOrders repository.ProductionOrderRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// ProductTx expone un TxRunner como la transacción de productos que usa la propagación.
func ProductTx(r TxRunner) propagation.ProductTx { return productTx{r} }

type productTx struct{ r TxRunner }

func (t productTx) RunProducts(ctx context.Context, fn func(ctx context.Context, products repository.ProductRepository) error) error {
	return t.r.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		return fn(ctx, repos.Products)
	})
}

// SettingsSource resuelve la configuración efectiva de un negocio.
type SettingsSource interface {
	Resolve(ctx context.Context, businessID string) (settings.Settings, error)
}

// OperationContext identidad del llamador, pasada explícitamente a cada operación.
type OperationContext struct {
	BusinessID      string
	UserID          string
	EconomicCycleID *string
}
