package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// transform: la raíz consume Quantity del producto base; la hija produce TransformedQuantity del
// transformado con costo entrante = cantidadBase × costoBase × fracción / cantidadTransformada,
// mezclado por promedio ponderado.
func (tx *ledgerTx) transform(c TransformCommand) error {
	base := tx.product(c.BaseProductID)
	target := tx.product(c.TransformedProductID)
	if base.AverageCost.IsZero() {
		return fmt.Errorf("%w: producto base %s", domain.ErrUndefinedCost, base.ID)
	}

	root := tx.newMovement(entity.OperationTransformation, base.ID, c.BaseVariationID, c.AreaID, c.Quantity.Neg(), c.Description)
	if err := tx.post(root, entity.OperationTransformation); err != nil {
		return err
	}

	unitCost := inventory.TransformedUnitCost(c.Quantity, base.AverageCost, c.Fraction, c.TransformedQuantity, tx.settings.CostOptions())
	parent := root.ID
	oldQty := target.TotalQuantity
	child := tx.newMovement(entity.OperationTransformation, target.ID, c.TransformedVariationID, c.destination(), c.TransformedQuantity, c.Description)
	child.ParentID = &parent
	if err := tx.incomingCost(child, oldQty, unitCost); err != nil {
		return err
	}
	return tx.post(child, "")
}
