package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// process: raíz ENTRY del producto elaborado en el área destino con costo = Σ insumo.cantidad ×
// insumo.costo / producido; hijas PROCESSED negativas por insumo en el área origen. Con orden de
// producción se incrementa la cantidad realizada en la misma transacción.
func (tx *ledgerTx) process(c ProcessCommand) error {
	produced := tx.product(c.ProductID)

	total := decimal.Zero
	for _, in := range c.Inputs {
		total = total.Add(tx.product(in.ProductID).AverageCost.Mul(in.Quantity))
	}
	opts := tx.settings.CostOptions()
	unitCost := inventory.RoundCost(total.DivRound(c.ProducedQuantity, opts.Precision+8), opts)

	oldQty := produced.TotalQuantity
	root := tx.newMovement(entity.OperationEntry, produced.ID, c.VariationID, c.ToAreaID, c.ProducedQuantity, c.Description)
	root.Price = &unitCost
	root.ProductionOrderID = c.ProductionOrderID
	if err := tx.incomingCost(root, oldQty, unitCost); err != nil {
		return err
	}
	if err := tx.post(root, ""); err != nil {
		return err
	}

	parent := root.ID
	for _, in := range c.Inputs {
		child := tx.newMovement(entity.OperationProcessed, in.ProductID, in.VariationID, c.FromAreaID, in.Quantity.Neg(), c.Description)
		child.ParentID = &parent
		child.ProductionOrderID = c.ProductionOrderID
		if err := tx.post(child, entity.OperationProcessed); err != nil {
			return err
		}
	}

	if c.ProductionOrderID != nil {
		return tx.addRealized(*c.ProductionOrderID, produced.ID, c.ProducedQuantity)
	}
	return nil
}

// addRealized suma delta a la cantidad realizada del producto en la orden.
func (tx *ledgerTx) addRealized(orderID, productID string, delta decimal.Decimal) error {
	state, err := tx.repos.ProductionOrders.GetStateForUpdate(tx.ctx, orderID, productID)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("%w: la orden %s no planifica el producto %s", domain.ErrNotFound, orderID, productID)
	}
	state.Realized = state.Realized.Add(delta)
	state.UpdatedAt = tx.now
	return tx.repos.ProductionOrders.SaveState(tx.ctx, state)
}
