package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestApplyDelta_DeficitNoFalla(t *testing.T) {
	row := &entity.StockAreaProduct{ProductID: "p", AreaID: "a", Quantity: d("2")}
	zero := inventory.ApplyDelta(row, nil, d("-5"))
	assert.False(t, zero)
	assert.True(t, row.Quantity.Equal(d("-3")), "el déficit se representa como cantidad negativa")
}

func TestApplyDelta_CeroExactoMarcaEliminacion(t *testing.T) {
	row := &entity.StockAreaProduct{Quantity: d("4")}
	assert.True(t, inventory.ApplyDelta(row, nil, d("-4")))
}

func TestApplyDelta_VariacionesSumanCantidad(t *testing.T) {
	red, blue := "red", "blue"
	row := &entity.StockAreaProduct{}
	inventory.ApplyDelta(row, &red, d("3"))
	inventory.ApplyDelta(row, &blue, d("2"))
	inventory.ApplyDelta(row, &red, d("-3"))

	assert.True(t, row.Quantity.Equal(d("2")))
	assert.Len(t, row.Variations, 1, "la variación en cero se elimina")
	assert.True(t, inventory.VariationQuantity(row, "blue").Equal(d("2")))
	assert.True(t, inventory.VariationQuantity(row, "red").IsZero())
}

func TestStockPolicy_PorOperacion(t *testing.T) {
	p := inventory.DefaultStockPolicy()
	assert.True(t, p.Allows(entity.OperationOut, d("1"), d("5")))
	assert.False(t, p.Allows(entity.OperationProcessed, d("1"), d("5")))
	assert.True(t, p.Allows(entity.OperationProcessed, d("5"), d("5")))

	custom := inventory.ParseStrictOperations([]string{" movement ", "bogus"})
	assert.Equal(t, inventory.RequireAvailable, custom.For(entity.OperationMovement))
	assert.Equal(t, inventory.AllowDeficit, custom.For(entity.OperationProcessed))
	assert.Equal(t, inventory.DefaultStockPolicy(), inventory.ParseStrictOperations(nil))
}

func TestApplyDelta_CeroConVariacionesNoElimina(t *testing.T) {
	red, blue := "red", "blue"
	row := &entity.StockAreaProduct{}
	assert.False(t, inventory.ApplyDelta(row, &blue, d("3")))
	assert.False(t, inventory.ApplyDelta(row, &red, d("-3")), "blue=3 y red=-3 siguen vivas aunque la suma sea cero")

	assert.True(t, row.Quantity.IsZero())
	assert.Len(t, row.Variations, 2)

	inventory.ApplyDelta(row, &blue, d("-3"))
	assert.True(t, inventory.ApplyDelta(row, &red, d("3")), "sin variaciones la fila en cero se elimina")
}
