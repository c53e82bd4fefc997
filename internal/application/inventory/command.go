package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Command operación de inventario. El conjunto de variantes es cerrado y cada una tiene su handler.
type Command interface {
	Operation() entity.Operation
	validate() error
	areaIDs() []string
	lockSet() ([]string, []entity.BalanceKey)
}

// Line un producto dentro de una operación.
type Line struct {
	ProductID   string
	VariationID *string
	// Quantity magnitud positiva; en ADJUST lleva signo.
	Quantity decimal.Decimal
	// Price costo unitario de la entrada (solo ENTRY).
	Price *decimal.Decimal
}

// EntryCommand entrada de stock con re-promedio de costo.
type EntryCommand struct {
	AreaID      string
	Lines       []Line
	Currency    string
	Description string
}

// OutCommand salida de stock; requiere descripción.
type OutCommand struct {
	AreaID      string
	Lines       []Line
	Description string
}

// WasteCommand merma; requiere descripción y no se puede revertir.
type WasteCommand struct {
	AreaID      string
	Lines       []Line
	Description string
}

// SaleCommand venta registrada desde el punto de venta; no se puede revertir.
type SaleCommand struct {
	AreaID      string
	Lines       []Line
	Description string
}

// AdjustCommand ajuste con signo; nunca altera el costo.
type AdjustCommand struct {
	AreaID      string
	Lines       []Line
	Description string
}

// TransferCommand traslado entre áreas (raíz negativa en origen, hija positiva en destino).
type TransferCommand struct {
	FromAreaID  string
	ToAreaID    string
	Lines       []Line
	Description string
}

// TransformCommand consume Quantity del producto base y produce TransformedQuantity del transformado.
type TransformCommand struct {
	AreaID                 string
	ToAreaID               string // opcional, por defecto AreaID
	BaseProductID          string
	BaseVariationID        *string
	Quantity               decimal.Decimal
	TransformedProductID   string
	TransformedVariationID *string
	TransformedQuantity    decimal.Decimal
	Fraction               decimal.Decimal
	Description            string
}

// ProcessCommand elaboración: consume Inputs en FromAreaID y produce ProducedQuantity en ToAreaID.
// Con Inputs vacío se derivan de la receta del producto.
type ProcessCommand struct {
	FromAreaID        string
	ToAreaID          string
	ProductID         string
	VariationID       *string
	ProducedQuantity  decimal.Decimal
	Inputs            []Line
	ProductionOrderID *string
	Description       string
}

func (EntryCommand) Operation() entity.Operation     { return entity.OperationEntry }
func (OutCommand) Operation() entity.Operation       { return entity.OperationOut }
func (WasteCommand) Operation() entity.Operation     { return entity.OperationWaste }
func (SaleCommand) Operation() entity.Operation      { return entity.OperationSale }
func (AdjustCommand) Operation() entity.Operation    { return entity.OperationAdjust }
func (TransferCommand) Operation() entity.Operation  { return entity.OperationMovement }
func (TransformCommand) Operation() entity.Operation { return entity.OperationTransformation }
func (ProcessCommand) Operation() entity.Operation   { return entity.OperationProcessed }

// ── validación ───────────────────────────────────────────────────────────────

func validateLines(lines []Line, signed bool) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: la operación no tiene productos", domain.ErrInvalidInput)
	}
	for i, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return fmt.Errorf("%w: producto vacío en la posición %d", domain.ErrInvalidInput, i)
		}
		if signed {
			if l.Quantity.IsZero() {
				return fmt.Errorf("%w: posición %d", domain.ErrInvalidQuantity, i)
			}
		} else if !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: posición %d", domain.ErrInvalidQuantity, i)
		}
		if l.Price != nil && l.Price.IsNegative() {
			return fmt.Errorf("%w: precio negativo en la posición %d", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

func requireArea(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: área requerida", domain.ErrInvalidInput)
	}
	return nil
}

func requireDescription(op entity.Operation, description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: %s", domain.ErrDescriptionRequired, op)
	}
	return nil
}

func (c EntryCommand) validate() error {
	if err := requireArea(c.AreaID); err != nil {
		return err
	}
	return validateLines(c.Lines, false)
}

func (c OutCommand) validate() error {
	if err := requireArea(c.AreaID); err != nil {
		return err
	}
	if err := requireDescription(c.Operation(), c.Description); err != nil {
		return err
	}
	return validateLines(c.Lines, false)
}

func (c WasteCommand) validate() error {
	if err := requireArea(c.AreaID); err != nil {
		return err
	}
	if err := requireDescription(c.Operation(), c.Description); err != nil {
		return err
	}
	return validateLines(c.Lines, false)
}

func (c SaleCommand) validate() error {
	if err := requireArea(c.AreaID); err != nil {
		return err
	}
	return validateLines(c.Lines, false)
}

func (c AdjustCommand) validate() error {
	if err := requireArea(c.AreaID); err != nil {
		return err
	}
	return validateLines(c.Lines, true)
}

func (c TransferCommand) validate() error {
	if err := requireArea(c.FromAreaID); err != nil {
		return err
	}
	if err := requireArea(c.ToAreaID); err != nil {
		return err
	}
	if c.FromAreaID == c.ToAreaID {
		return domain.ErrSameArea
	}
	return validateLines(c.Lines, false)
}

func (c TransformCommand) validate() error {
	if err := requireArea(c.AreaID); err != nil {
		return err
	}
	if c.BaseProductID == "" || c.TransformedProductID == "" {
		return fmt.Errorf("%w: producto base y transformado requeridos", domain.ErrInvalidInput)
	}
	if c.BaseProductID == c.TransformedProductID {
		return fmt.Errorf("%w: el producto transformado debe ser distinto del base", domain.ErrInvalidInput)
	}
	if !c.Quantity.IsPositive() || !c.TransformedQuantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if !c.Fraction.IsPositive() {
		return fmt.Errorf("%w: la fracción debe ser mayor que cero", domain.ErrInvalidInput)
	}
	return nil
}

func (c ProcessCommand) validate() error {
	if err := requireArea(c.FromAreaID); err != nil {
		return err
	}
	if err := requireArea(c.ToAreaID); err != nil {
		return err
	}
	if c.ProductID == "" {
		return fmt.Errorf("%w: producto a elaborar requerido", domain.ErrInvalidInput)
	}
	if !c.ProducedQuantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if err := validateLines(c.Inputs, false); err != nil {
		return err
	}
	for _, in := range c.Inputs {
		if in.ProductID == c.ProductID {
			return fmt.Errorf("%w: el producto elaborado no puede ser su propio insumo", domain.ErrInvalidInput)
		}
	}
	return nil
}

// ── áreas y conjunto de bloqueo ──────────────────────────────────────────────

func (c EntryCommand) areaIDs() []string  { return []string{c.AreaID} }
func (c OutCommand) areaIDs() []string    { return []string{c.AreaID} }
func (c WasteCommand) areaIDs() []string  { return []string{c.AreaID} }
func (c SaleCommand) areaIDs() []string   { return []string{c.AreaID} }
func (c AdjustCommand) areaIDs() []string { return []string{c.AreaID} }
func (c TransferCommand) areaIDs() []string {
	return []string{c.FromAreaID, c.ToAreaID}
}
func (c TransformCommand) areaIDs() []string {
	return []string{c.AreaID, c.destination()}
}
func (c ProcessCommand) areaIDs() []string {
	return []string{c.FromAreaID, c.ToAreaID}
}

func (c TransformCommand) destination() string {
	if c.ToAreaID == "" {
		return c.AreaID
	}
	return c.ToAreaID
}

func linesLockSet(areaID string, lines []Line) ([]string, []entity.BalanceKey) {
	ids := make([]string, 0, len(lines))
	keys := make([]entity.BalanceKey, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
		keys = append(keys, entity.BalanceKey{ProductID: l.ProductID, AreaID: areaID})
	}
	return sortedUnique(ids), keys
}

func (c EntryCommand) lockSet() ([]string, []entity.BalanceKey)  { return linesLockSet(c.AreaID, c.Lines) }
func (c OutCommand) lockSet() ([]string, []entity.BalanceKey)    { return linesLockSet(c.AreaID, c.Lines) }
func (c WasteCommand) lockSet() ([]string, []entity.BalanceKey)  { return linesLockSet(c.AreaID, c.Lines) }
func (c SaleCommand) lockSet() ([]string, []entity.BalanceKey)   { return linesLockSet(c.AreaID, c.Lines) }
func (c AdjustCommand) lockSet() ([]string, []entity.BalanceKey) { return linesLockSet(c.AreaID, c.Lines) }

func (c TransferCommand) lockSet() ([]string, []entity.BalanceKey) {
	ids, keys := linesLockSet(c.FromAreaID, c.Lines)
	for _, l := range c.Lines {
		keys = append(keys, entity.BalanceKey{ProductID: l.ProductID, AreaID: c.ToAreaID})
	}
	return ids, keys
}

func (c TransformCommand) lockSet() ([]string, []entity.BalanceKey) {
	return sortedUnique([]string{c.BaseProductID, c.TransformedProductID}), []entity.BalanceKey{
		{ProductID: c.BaseProductID, AreaID: c.AreaID},
		{ProductID: c.TransformedProductID, AreaID: c.destination()},
	}
}

func (c ProcessCommand) lockSet() ([]string, []entity.BalanceKey) {
	ids, keys := linesLockSet(c.FromAreaID, c.Inputs)
	ids = sortedUnique(append(ids, c.ProductID))
	keys = append(keys, entity.BalanceKey{ProductID: c.ProductID, AreaID: c.ToAreaID})
	return ids, keys
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
