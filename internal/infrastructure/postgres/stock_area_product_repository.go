package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockAreaProductRepository = (*StockAreaProductRepo)(nil)

// StockAreaProductRepo balances por área sobre PostgreSQL (usable con pool o tx).
// Las variaciones se guardan como JSONB en la misma fila.
type StockAreaProductRepo struct {
	q Querier
}

// NewStockAreaProductRepository construye el adaptador de balances. Pasar pool o tx (Querier).
func NewStockAreaProductRepository(q Querier) *StockAreaProductRepo {
	return &StockAreaProductRepo{q: q}
}

const balanceColumns = `id, business_id, product_id, area_id, quantity, variations, updated_at`

type variationJSON struct {
	VariationID string          `json:"variation_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

func encodeVariations(vs []entity.StockAreaVariation) ([]byte, error) {
	out := make([]variationJSON, 0, len(vs))
	for _, v := range vs {
		out = append(out, variationJSON{VariationID: v.VariationID, Quantity: v.Quantity})
	}
	return json.Marshal(out)
}

func decodeVariations(raw []byte) ([]entity.StockAreaVariation, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var in []variationJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]entity.StockAreaVariation, 0, len(in))
	for _, v := range in {
		out = append(out, entity.StockAreaVariation{VariationID: v.VariationID, Quantity: v.Quantity})
	}
	return out, nil
}

func scanBalance(s scanner) (*entity.StockAreaProduct, error) {
	var (
		row entity.StockAreaProduct
		raw []byte
	)
	if err := s.Scan(&row.ID, &row.BusinessID, &row.ProductID, &row.AreaID, &row.Quantity, &raw, &row.UpdatedAt); err != nil {
		return nil, err
	}
	vs, err := decodeVariations(raw)
	if err != nil {
		return nil, fmt.Errorf("decode variations: %w", err)
	}
	row.Variations = vs
	return &row, nil
}

// LockForUpdate bloquea las filas existentes de las claves, en orden de id (SELECT FOR UPDATE).
func (r *StockAreaProductRepo) LockForUpdate(ctx context.Context, keys []entity.BalanceKey) ([]*entity.StockAreaProduct, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	products := make([]string, 0, len(keys))
	areas := make([]string, 0, len(keys))
	for _, k := range keys {
		products = append(products, k.ProductID)
		areas = append(areas, k.AreaID)
	}
	return r.list(ctx, `SELECT `+balanceColumns+` FROM stock_area_products
		WHERE (product_id, area_id) IN (SELECT * FROM unnest($1::text[], $2::text[]))
		ORDER BY id FOR UPDATE`, products, areas)
}

// Get obtiene el balance de un producto en un área.
func (r *StockAreaProductRepo) Get(ctx context.Context, productID, areaID string) (*entity.StockAreaProduct, error) {
	row, err := scanBalance(r.q.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM stock_area_products WHERE product_id = $1 AND area_id = $2`, productID, areaID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return row, nil
}

// Save inserta o actualiza el balance (por id).
func (r *StockAreaProductRepo) Save(ctx context.Context, row *entity.StockAreaProduct) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	row.UpdatedAt = time.Now()
	raw, err := encodeVariations(row.Variations)
	if err != nil {
		return fmt.Errorf("encode variations: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO stock_area_products (`+balanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET quantity = EXCLUDED.quantity, variations = EXCLUDED.variations, updated_at = EXCLUDED.updated_at`,
		row.ID, row.BusinessID, row.ProductID, row.AreaID, row.Quantity, raw, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// Delete elimina un balance que quedó en cero.
func (r *StockAreaProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_area_products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete balance: %w", err)
	}
	return nil
}

// ListByProduct balances de un producto en todas sus áreas.
func (r *StockAreaProductRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockAreaProduct, error) {
	return r.list(ctx, `SELECT `+balanceColumns+` FROM stock_area_products WHERE product_id = $1 ORDER BY area_id`, productID)
}

// ListByArea balances de un área.
func (r *StockAreaProductRepo) ListByArea(ctx context.Context, areaID string) ([]*entity.StockAreaProduct, error) {
	return r.list(ctx, `SELECT `+balanceColumns+` FROM stock_area_products WHERE area_id = $1 ORDER BY product_id`, areaID)
}

func (r *StockAreaProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockAreaProduct, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAreaProduct
	for rows.Next() {
		row, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
