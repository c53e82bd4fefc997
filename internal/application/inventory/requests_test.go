package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestCommandFromMovement(t *testing.T) {
	cmd, err := inventory.CommandFromMovement(dto.MovementRequest{
		Operation: "ENTRY", ProductID: "p1", AreaID: "A", Quantity: d("2"), Price: ptr(d("3")), Currency: "USD",
	})
	require.NoError(t, err)
	entry, ok := cmd.(inventory.EntryCommand)
	require.True(t, ok)
	assert.Equal(t, "USD", entry.Currency)
	require.Len(t, entry.Lines, 1)
	assert.Equal(t, "3", entry.Lines[0].Price.String())

	cmd, err = inventory.CommandFromMovement(dto.MovementRequest{Operation: "WASTE", ProductID: "p1", AreaID: "A", Quantity: d("1"), Description: "roto"})
	require.NoError(t, err)
	assert.IsType(t, inventory.WasteCommand{}, cmd)

	_, err = inventory.CommandFromMovement(dto.MovementRequest{Operation: "REMOVED", ProductID: "p1", AreaID: "A"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCommandFromBulk(t *testing.T) {
	cmd, err := inventory.CommandFromBulk(dto.BulkMovementRequest{
		Operation:   "OUT",
		StockAreaID: "A",
		Description: "consumo",
		Products:    []dto.MovementItem{{ProductID: "p1", Quantity: d("1")}, {ProductID: "p2", Quantity: d("2")}},
	})
	require.NoError(t, err)
	out, ok := cmd.(inventory.OutCommand)
	require.True(t, ok)
	assert.Equal(t, "A", out.AreaID)
	assert.Len(t, out.Lines, 2)
}

func TestCommandFromTransfer(t *testing.T) {
	single := inventory.CommandFromTransfer(dto.TransferRequest{AreaID: "A", MovedToID: "B", ProductID: "p1", Quantity: d("4")})
	require.Len(t, single.Lines, 1)
	assert.Equal(t, "p1", single.Lines[0].ProductID)

	bulk := inventory.CommandFromTransfer(dto.TransferRequest{
		AreaID: "A", MovedToID: "B",
		Products: []dto.MovementItem{{ProductID: "p1", Quantity: d("1")}, {ProductID: "p2", Quantity: d("1")}},
	})
	assert.Len(t, bulk.Lines, 2)
	assert.Equal(t, "B", bulk.ToAreaID)
}

func TestCommandFromProcessing(t *testing.T) {
	order := "op-9"
	cmd := inventory.CommandFromProcessing(dto.ProcessingRequest{
		AreaID: "A", MovedToID: "B", ProductID: "cake", Quantity: d("2"), ProductionOrderID: &order,
	})
	assert.Equal(t, "A", cmd.FromAreaID)
	assert.Equal(t, "B", cmd.ToAreaID)
	assert.Empty(t, cmd.Inputs)
	assert.Equal(t, &order, cmd.ProductionOrderID)
}
