package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// QueryUseCase lecturas del libro y de los balances fuera de transacción (solo estado confirmado).
type QueryUseCase struct {
	movements repository.StockMovementRepository
	balances  repository.StockAreaProductRepository
	products  repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	movements repository.StockMovementRepository,
	balances repository.StockAreaProductRepository,
	products repository.ProductRepository,
) *QueryUseCase {
	return &QueryUseCase{movements: movements, balances: balances, products: products}
}

// GetMovement devuelve una fila del libro del negocio.
func (uc *QueryUseCase) GetMovement(ctx context.Context, op OperationContext, id string) (*entity.StockMovement, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.BusinessID != op.BusinessID {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return m, nil
}

// ListProductMovements movimientos de un producto, más recientes primero.
func (uc *QueryUseCase) ListProductMovements(ctx context.Context, op OperationContext, productID string, page dto.PageRequest) ([]*entity.StockMovement, error) {
	if err := uc.ownProduct(ctx, op, productID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	return uc.movements.ListByProduct(ctx, productID, page.Limit, page.Offset)
}

// Stock balances por producto, por área o de un par producto/área.
func (uc *QueryUseCase) Stock(ctx context.Context, op OperationContext, productID, areaID string) ([]*entity.StockAreaProduct, error) {
	var (
		rows []*entity.StockAreaProduct
		err  error
	)
	switch {
	case productID != "" && areaID != "":
		var row *entity.StockAreaProduct
		row, err = uc.balances.Get(ctx, productID, areaID)
		if row != nil {
			rows = append(rows, row)
		}
	case productID != "":
		rows, err = uc.balances.ListByProduct(ctx, productID)
	case areaID != "":
		rows, err = uc.balances.ListByArea(ctx, areaID)
	default:
		return nil, fmt.Errorf("%w: product_id o area_id requerido", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if r.BusinessID == op.BusinessID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Consistency compara la suma de movimientos contables con el balance proyectado.
func (uc *QueryUseCase) Consistency(ctx context.Context, op OperationContext, productID, areaID string) (dto.ConsistencyDTO, error) {
	report := dto.ConsistencyDTO{ProductID: productID, AreaID: areaID}
	if productID == "" || areaID == "" {
		return report, fmt.Errorf("%w: product_id y area_id requeridos", domain.ErrInvalidInput)
	}
	if err := uc.ownProduct(ctx, op, productID); err != nil {
		return report, err
	}
	sum, err := uc.movements.SumAccountable(ctx, productID, areaID)
	if err != nil {
		return report, err
	}
	row, err := uc.balances.Get(ctx, productID, areaID)
	if err != nil {
		return report, err
	}
	report.LedgerSum = sum
	report.Balance = decimal.Zero
	if row != nil {
		report.Balance = row.Quantity
	}
	report.Consistent = report.LedgerSum.Equal(report.Balance)
	return report, nil
}

func (uc *QueryUseCase) ownProduct(ctx context.Context, op OperationContext, productID string) error {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil || p.BusinessID != op.BusinessID {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return nil
}
