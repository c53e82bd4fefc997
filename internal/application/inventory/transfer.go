package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// transfer: por cada línea una raíz MOVEMENT negativa en origen (movedToId = destino) y una hija
// positiva en destino con parentId = raíz. El costo no cambia.
func (tx *ledgerTx) transfer(c TransferCommand) error {
	for _, l := range c.Lines {
		to := c.ToAreaID
		root := tx.newMovement(entity.OperationMovement, l.ProductID, l.VariationID, c.FromAreaID, l.Quantity.Neg(), c.Description)
		root.MovedToID = &to
		if err := tx.post(root, entity.OperationMovement); err != nil {
			return err
		}
		parent := root.ID
		child := tx.newMovement(entity.OperationMovement, l.ProductID, l.VariationID, c.ToAreaID, l.Quantity, c.Description)
		child.ParentID = &parent
		if err := tx.post(child, ""); err != nil {
			return err
		}
	}
	return nil
}
