package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ledgerTx estado de una operación dentro de su transacción: productos y balances bloqueados,
// movimientos creados y productos cuyo costo cambió.
type ledgerTx struct {
	ctx      context.Context
	repos    TxRepos
	op       OperationContext
	settings settings.Settings
	now      time.Time

	products map[string]*entity.Product
	balances map[entity.BalanceKey]*entity.StockAreaProduct

	created     []*entity.StockMovement
	touched     []string
	costChanged []string
}

// begin bloquea primero los productos y luego los balances, ambos ordenados por id.
func begin(ctx context.Context, repos TxRepos, op OperationContext, s settings.Settings, now time.Time,
	productIDs []string, keys []entity.BalanceKey) (*ledgerTx, error) {
	tx := &ledgerTx{
		ctx:      ctx,
		repos:    repos,
		op:       op,
		settings: s,
		now:      now,
		products: make(map[string]*entity.Product, len(productIDs)),
		balances: make(map[entity.BalanceKey]*entity.StockAreaProduct, len(keys)),
	}

	locked, err := repos.Products.GetManyForUpdate(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range locked {
		tx.products[p.ID] = p
	}
	for _, id := range productIDs {
		p, ok := tx.products[id]
		if !ok || p.DeletedAt != nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if p.BusinessID != op.BusinessID {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrForbidden, id)
		}
		if !p.TracksStock() {
			return nil, fmt.Errorf("%w: el producto %s (%s) no lleva stock", domain.ErrInvalidInput, id, p.Type)
		}
	}

	rows, err := repos.Balances.LockForUpdate(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		tx.balances[r.Key()] = r
	}
	return tx, nil
}

func (tx *ledgerTx) product(id string) *entity.Product {
	return tx.products[id]
}

// available cantidad actual del balance (o de la variación) en el área.
func (tx *ledgerTx) available(key entity.BalanceKey, variationID *string) decimal.Decimal {
	row := tx.balances[key]
	if row == nil {
		return decimal.Zero
	}
	if variationID != nil {
		return inventory.VariationQuantity(row, *variationID)
	}
	return row.Quantity
}

// newMovement crea la fila con la foto del costo actual del producto.
func (tx *ledgerTx) newMovement(op entity.Operation, productID string, variationID *string, areaID string,
	qty decimal.Decimal, description string) *entity.StockMovement {
	p := tx.products[productID]
	return &entity.StockMovement{
		BusinessID:          tx.op.BusinessID,
		Operation:           op,
		Quantity:            qty,
		ProductID:           productID,
		VariationID:         variationID,
		AreaID:              areaID,
		CostBeforeOperation: p.AverageCost,
		UnitCost:            p.AverageCost,
		Accountable:         true,
		EconomicCycleID:     tx.op.EconomicCycleID,
		Description:         strings.TrimSpace(description),
		CreatedBy:           tx.op.UserID,
		CreatedAt:           tx.now,
	}
}

// post aplica la fila: piso de stock, delta del balance, total del producto y append al libro.
func (tx *ledgerTx) post(m *entity.StockMovement, floor entity.Operation) error {
	if err := checkVariation(tx.products[m.ProductID], m.VariationID); err != nil {
		return err
	}
	key := m.Key()
	if m.Quantity.IsNegative() && floor != "" {
		if !tx.settings.Policy.Allows(floor, tx.available(key, m.VariationID), m.Quantity.Neg()) {
			return fmt.Errorf("%w: producto %s en área %s", domain.ErrInsufficientStock, m.ProductID, m.AreaID)
		}
	}

	row := tx.balances[key]
	if row == nil {
		row = &entity.StockAreaProduct{
			BusinessID: tx.op.BusinessID,
			ProductID:  m.ProductID,
			AreaID:     m.AreaID,
			Quantity:   decimal.Zero,
		}
	}
	if inventory.ApplyDelta(row, m.VariationID, m.Quantity) {
		if row.ID != "" {
			if err := tx.repos.Balances.Delete(tx.ctx, row.ID); err != nil {
				return err
			}
		}
		tx.balances[key] = nil
	} else {
		row.UpdatedAt = tx.now
		if err := tx.repos.Balances.Save(tx.ctx, row); err != nil {
			return err
		}
		tx.balances[key] = row
	}

	p := tx.products[m.ProductID]
	p.TotalQuantity = p.TotalQuantity.Add(m.Quantity)
	if err := tx.repos.Products.UpdateTotalQuantity(tx.ctx, p.ID, p.TotalQuantity); err != nil {
		return err
	}
	if err := tx.repos.Movements.Append(tx.ctx, m); err != nil {
		return err
	}
	tx.created = append(tx.created, m)
	tx.touched = appendOnce(tx.touched, p.ID)
	return nil
}

// checkVariation exige variación en los productos VARIATION y la prohíbe en el resto, para que las
// variaciones del balance sumen siempre la cantidad de la fila.
func checkVariation(p *entity.Product, variationID *string) error {
	switch {
	case p.Type == entity.ProductTypeVariation && (variationID == nil || *variationID == ""):
		return fmt.Errorf("%w: el producto %s requiere variation_id", domain.ErrInvalidInput, p.ID)
	case p.Type != entity.ProductTypeVariation && variationID != nil:
		return fmt.Errorf("%w: el producto %s no tiene variaciones", domain.ErrInvalidInput, p.ID)
	}
	return nil
}

// setCost persiste el nuevo costo promedio del producto.
func (tx *ledgerTx) setCost(p *entity.Product, cost decimal.Decimal) error {
	if cost.Equal(p.AverageCost) {
		return nil
	}
	p.AverageCost = cost
	if err := tx.repos.Products.UpdateCost(tx.ctx, p.ID, cost); err != nil {
		return err
	}
	tx.costChanged = appendOnce(tx.costChanged, p.ID)
	return nil
}

// incomingCost re-promedia el costo con una entrada de qty unidades a unitCost.
// Los productos con costo definido no se re-promedian. oldQty es el total antes de la entrada.
func (tx *ledgerTx) incomingCost(m *entity.StockMovement, oldQty, unitCost decimal.Decimal) error {
	p := tx.products[m.ProductID]
	m.UnitCost = unitCost
	if p.IsCostDefined {
		return nil
	}
	m.AffectedCost = true
	return tx.setCost(p, inventory.CostCalculator(oldQty, p.AverageCost, m.Quantity, unitCost, tx.settings.CostOptions()))
}

func appendOnce(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
