package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

// ProductionOrderRepo estado de manufactura sobre PostgreSQL.
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador.
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

// GetStateForUpdate bloquea el estado del producto en la orden.
func (r *ProductionOrderRepo) GetStateForUpdate(ctx context.Context, orderID, productID string) (*entity.ManufacturingState, error) {
	var st entity.ManufacturingState
	err := r.q.QueryRow(ctx, `
		SELECT production_order_id, product_id, planned, realized, updated_at
		FROM manufacturing_states WHERE production_order_id = $1 AND product_id = $2
		FOR UPDATE`, orderID, productID,
	).Scan(&st.ProductionOrderID, &st.ProductID, &st.Planned, &st.Realized, &st.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manufacturing state: %w", err)
	}
	return &st, nil
}

// SaveState inserta o actualiza el estado.
func (r *ProductionOrderRepo) SaveState(ctx context.Context, st *entity.ManufacturingState) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO manufacturing_states (production_order_id, product_id, planned, realized, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (production_order_id, product_id)
		DO UPDATE SET planned = EXCLUDED.planned, realized = EXCLUDED.realized, updated_at = now()`,
		st.ProductionOrderID, st.ProductID, st.Planned, st.Realized)
	if err != nil {
		return fmt.Errorf("save manufacturing state: %w", err)
	}
	return nil
}
