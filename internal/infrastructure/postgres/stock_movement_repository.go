package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, business_id, operation, quantity, product_id, variation_id, area_id, moved_to_id,
	parent_id, cost_before_operation, affected_cost, unit_cost, price, accountable, removed_operation_id,
	economic_cycle_id, production_order_id, description, created_by, created_at`

func scanMovement(s scanner) (*entity.StockMovement, error) {
	var (
		m  entity.StockMovement
		op string
	)
	err := s.Scan(&m.ID, &m.BusinessID, &op, &m.Quantity, &m.ProductID, &m.VariationID, &m.AreaID, &m.MovedToID,
		&m.ParentID, &m.CostBeforeOperation, &m.AffectedCost, &m.UnitCost, &m.Price, &m.Accountable,
		&m.RemovedOperationID, &m.EconomicCycleID, &m.ProductionOrderID, &m.Description, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Operation = entity.Operation(op)
	return &m, nil
}

// Append persiste un movimiento del libro.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		m.ID, m.BusinessID, string(m.Operation), m.Quantity, m.ProductID, m.VariationID, m.AreaID, m.MovedToID,
		m.ParentID, m.CostBeforeOperation, m.AffectedCost, m.UnitCost, m.Price, m.Accountable,
		m.RemovedOperationID, m.EconomicCycleID, m.ProductionOrderID, m.Description, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.ID)
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento y bloquea la fila.
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockMovementRepo) getOne(ctx context.Context, query, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// ListChildren hijas de un movimiento en orden de creación, sin las filas REMOVED.
func (r *StockMovementRepo) ListChildren(ctx context.Context, parentID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE parent_id = $1 AND operation <> 'REMOVED' ORDER BY seq`, parentID)
}

// MarkReversed deja la fila fuera de la suma contable y enlaza su REMOVED.
func (r *StockMovementRepo) MarkReversed(ctx context.Context, id, removedOperationID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_movements SET accountable = FALSE, removed_operation_id = $2 WHERE id = $1`,
		id, removedOperationID)
	if err != nil {
		return fmt.Errorf("mark reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return nil
}

// SumAccountable suma las cantidades contables de un producto en un área.
func (r *StockMovementRepo) SumAccountable(ctx context.Context, productID, areaID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_movements
		WHERE product_id = $1 AND area_id = $2 AND accountable`, productID, areaID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum accountable: %w", err)
	}
	return sum, nil
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1 ORDER BY seq DESC`
	args := []any{productID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	return r.list(ctx, query, args...)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
