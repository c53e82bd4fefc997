package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// entry: suma stock y re-promedia el costo con el precio de la línea. Sin precio se toma el costo
// actual; si el producto no tiene costo se rechaza con ErrUndefinedCost.
func (tx *ledgerTx) entry(c EntryCommand) error {
	for _, l := range c.Lines {
		p := tx.product(l.ProductID)
		unitCost := p.AverageCost
		if l.Price != nil {
			unitCost = *l.Price
		} else if unitCost.IsZero() && !p.IsCostDefined {
			return fmt.Errorf("%w: %s", domain.ErrUndefinedCost, p.ID)
		}
		oldQty := p.TotalQuantity
		m := tx.newMovement(entity.OperationEntry, p.ID, l.VariationID, c.AreaID, l.Quantity, c.Description)
		m.Price = l.Price
		if err := tx.incomingCost(m, oldQty, unitCost); err != nil {
			return err
		}
		if err := tx.post(m, ""); err != nil {
			return err
		}
	}
	return nil
}

// decrease: OUT, WASTE y SALE restan stock al costo promedio actual, sin tocar el costo.
func (tx *ledgerTx) decrease(op entity.Operation, areaID string, lines []Line, description string) error {
	for _, l := range lines {
		m := tx.newMovement(op, l.ProductID, l.VariationID, areaID, l.Quantity.Neg(), description)
		if err := tx.post(m, op); err != nil {
			return err
		}
	}
	return nil
}

// adjust: cantidad con signo; nunca altera el costo.
func (tx *ledgerTx) adjust(c AdjustCommand) error {
	for _, l := range c.Lines {
		m := tx.newMovement(entity.OperationAdjust, l.ProductID, l.VariationID, c.AreaID, l.Quantity, c.Description)
		if err := tx.post(m, entity.OperationAdjust); err != nil {
			return err
		}
	}
	return nil
}
