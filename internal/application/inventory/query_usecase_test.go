package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func newQuery(f *fixture) *inventory.QueryUseCase {
	return inventory.NewQueryUseCase(f.store.Movements(), f.store.Balances(), f.store.Products())
}

func TestQuery_ConsistenciaTrasReversion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, settings.Settings{})
	q := newQuery(f)

	f.entry(t, "p1", "A", "8", "1")
	second := f.entry(t, "p1", "A", "2", "1")
	_, err := f.uc.Reverse(ctx, f.op, second[0].ID, "error de digitación")
	require.NoError(t, err)

	report, err := q.Consistency(ctx, f.op, "p1", "A")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, "8", report.LedgerSum.String())
	assert.Equal(t, "8", report.Balance.String())

	_, err = q.Consistency(ctx, f.op, "p1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = q.Consistency(ctx, inventory.OperationContext{BusinessID: "otro"}, "p1", "A")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuery_StockYMovimientos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, settings.Settings{})
	q := newQuery(f)

	f.entry(t, "p1", "A", "5", "2")
	f.entry(t, "p1", "B", "1", "2")
	last := f.entry(t, "p2", "A", "3", "4")

	rows, err := q.Stock(ctx, f.op, "p1", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = q.Stock(ctx, f.op, "", "A")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = q.Stock(ctx, f.op, "p2", "B")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = q.Stock(ctx, f.op, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := q.ListProductMovements(ctx, f.op, "p1", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].AreaID, "más recientes primero")

	got, err := q.GetMovement(ctx, f.op, last[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "p2", got.ProductID)

	_, err = q.GetMovement(ctx, inventory.OperationContext{BusinessID: "otro"}, last[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplenishment_PriorizaPorDeficit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, settings.Settings{})
	alert := d("10")
	f.store.PutProduct(&entity.Product{ID: "arroz", BusinessID: biz, Name: "Arroz", Type: entity.ProductTypeStock, AlertLimit: &alert, TotalQuantity: d("8"), AverageCost: d("2")})
	f.store.PutProduct(&entity.Product{ID: "sal", BusinessID: biz, Name: "Sal", Type: entity.ProductTypeStock, AlertLimit: &alert, TotalQuantity: d("2"), AverageCost: d("1")})
	f.store.PutProduct(&entity.Product{ID: "azucar", BusinessID: biz, Name: "Azúcar", Type: entity.ProductTypeStock, AlertLimit: &alert, TotalQuantity: d("12")})

	list, err := inventory.NewReplenishmentUseCase(f.store.Products()).GenerateReplenishmentList(ctx, f.op)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "sal", list[0].ProductID)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, "13", list[0].SuggestedOrderQty.String(), "10 × 1.5 − 2")
	assert.Equal(t, "13", list[0].EstimatedOrderCost.String())

	assert.Equal(t, "arroz", list[1].ProductID)
	assert.Equal(t, "7", list[1].SuggestedOrderQty.String())
	assert.Equal(t, "14", list[1].EstimatedOrderCost.String())
}

func TestReplenishment_SinAlertas(t *testing.T) {
	f := newFixture(t, settings.Settings{})
	list, err := inventory.NewReplenishmentUseCase(f.store.Products()).GenerateReplenishmentList(context.Background(), f.op)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
