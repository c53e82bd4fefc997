package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Reverse revierte un movimiento raíz y todas sus hijas. Por cada fila se agrega un REMOVED con la
// cantidad negada (no contable), la original queda no contable, se deshace el delta del balance y
// se restaura el costo previo en las filas que re-promediaron. Devuelve las filas REMOVED.
func (uc *LedgerUseCase) Reverse(ctx context.Context, op OperationContext, movementID, description string) ([]*entity.StockMovement, error) {
	if op.BusinessID == "" {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(movementID) == "" {
		return nil, fmt.Errorf("%w: movimiento requerido", domain.ErrInvalidInput)
	}
	s, err := uc.settings.Resolve(ctx, op.BusinessID)
	if err != nil {
		return nil, err
	}

	var tx *ledgerTx
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		root, err := repos.Movements.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if root == nil || root.BusinessID != op.BusinessID {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, movementID)
		}
		if !root.IsRoot() {
			return domain.ErrNotRootMovement
		}
		switch root.Operation {
		case entity.OperationSale, entity.OperationWaste, entity.OperationRemoved:
			return fmt.Errorf("%w: %s", domain.ErrNotReversible, root.Operation)
		}
		if !root.Accountable {
			return domain.ErrAlreadyReversed
		}

		children, err := repos.Movements.ListChildren(ctx, root.ID)
		if err != nil {
			return err
		}
		// hijas en orden inverso de creación y al final la raíz
		rows := make([]*entity.StockMovement, 0, len(children)+1)
		for i := len(children) - 1; i >= 0; i-- {
			if children[i].Accountable {
				rows = append(rows, children[i])
			}
		}
		rows = append(rows, root)

		productIDs := make([]string, 0, len(rows))
		keys := make([]entity.BalanceKey, 0, len(rows))
		for _, r := range rows {
			productIDs = append(productIDs, r.ProductID)
			keys = append(keys, r.Key())
		}
		tx, err = begin(ctx, repos, op, s, uc.now(), sortedUnique(productIDs), keys)
		if err != nil {
			return err
		}
		if description == "" {
			description = "Reversión de " + string(root.Operation)
		}
		for _, r := range rows {
			if err := tx.undo(r, description); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, op.BusinessID, s, tx)
	return tx.created, nil
}

func (tx *ledgerTx) undo(row *entity.StockMovement, description string) error {
	parent := row.ID
	rem := tx.newMovement(entity.OperationRemoved, row.ProductID, row.VariationID, row.AreaID, row.Quantity.Neg(), description)
	rem.ParentID = &parent
	rem.Accountable = false
	rem.UnitCost = row.UnitCost
	rem.ProductionOrderID = row.ProductionOrderID
	if err := tx.post(rem, ""); err != nil {
		return err
	}
	if err := tx.repos.Movements.MarkReversed(tx.ctx, row.ID, rem.ID); err != nil {
		return err
	}
	if row.AffectedCost {
		if err := tx.setCost(tx.product(row.ProductID), row.CostBeforeOperation); err != nil {
			return err
		}
	}
	if row.ProductionOrderID != nil && row.Operation == entity.OperationEntry {
		return tx.addRealized(*row.ProductionOrderID, row.ProductID, row.Quantity.Neg())
	}
	return nil
}
