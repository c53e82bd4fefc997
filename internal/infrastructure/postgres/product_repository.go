package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, business_id, name, type, average_cost, total_quantity, is_cost_defined, performance,
	recipe_id, stock_limit, alert_limit, availability, under_alert, is_manufacturable, online_sellable,
	deleted_at, created_at, updated_at`

func scanProduct(s scanner) (*entity.Product, error) {
	var (
		p   entity.Product
		typ string
	)
	err := s.Scan(&p.ID, &p.BusinessID, &p.Name, &typ, &p.AverageCost, &p.TotalQuantity, &p.IsCostDefined,
		&p.Performance, &p.RecipeID, &p.StockLimit, &p.AlertLimit, &p.Availability, &p.UnderAlert,
		&p.IsManufacturable, &p.OnlineSellable, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Type = entity.ProductType(typ)
	return &p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetManyForUpdate bloquea los productos en orden de id (SELECT FOR UPDATE).
func (r *ProductRepo) GetManyForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateCost actualiza solo el costo del producto (usado por el motor de inventario).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	return r.exec(ctx, "update product cost",
		`UPDATE products SET average_cost = $2, updated_at = now() WHERE id = $1`, productID, cost)
}

// UpdateTotalQuantity actualiza la suma desnormalizada de balances.
func (r *ProductRepo) UpdateTotalQuantity(ctx context.Context, productID string, qty decimal.Decimal) error {
	return r.exec(ctx, "update product total",
		`UPDATE products SET total_quantity = $2, updated_at = now() WHERE id = $1`, productID, qty)
}

// UpdateAvailability fija la disponibilidad calculada de un combo (NULL = ilimitada).
func (r *ProductRepo) UpdateAvailability(ctx context.Context, productID string, availability *decimal.Decimal) error {
	return r.exec(ctx, "update product availability",
		`UPDATE products SET availability = $2, updated_at = now() WHERE id = $1`, productID, availability)
}

// UpdateFlags actualiza los indicadores de alerta y vendibilidad.
func (r *ProductRepo) UpdateFlags(ctx context.Context, productID string, flags entity.ProductFlags) error {
	return r.exec(ctx, "update product flags",
		`UPDATE products SET under_alert = $2, is_manufacturable = $3, online_sellable = $4, updated_at = now()
		 WHERE id = $1`, productID, flags.UnderAlert, flags.IsManufacturable, flags.OnlineSellable)
}

// ListBelowAlert productos activos con stock por debajo de su límite de alerta.
func (r *ProductRepo) ListBelowAlert(ctx context.Context, businessID string) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products
		WHERE business_id = $1 AND deleted_at IS NULL AND alert_limit IS NOT NULL
		  AND type IN ('STOCK', 'VARIATION', 'MENU', 'WASTE', 'ASSET')
		  AND total_quantity < alert_limit
		ORDER BY id`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list below alert: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
