package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRun_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	st.PutProduct(&entity.Product{ID: "p1", Type: entity.ProductTypeStock, AverageCost: d("5")})

	boom := errors.New("boom")
	err := st.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		require.NoError(t, r.Products.UpdateCost(ctx, "p1", d("9")))
		require.NoError(t, r.Movements.Append(ctx, &entity.StockMovement{ProductID: "p1", AreaID: "a1", Quantity: d("1"), Accountable: true}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := st.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.AverageCost.Equal(d("5")), "el rollback conserva el costo previo")
	sum, err := st.Movements().SumAccountable(ctx, "p1", "a1")
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestRun_CommitYOrdenDeBloqueos(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	st.PutProduct(&entity.Product{ID: "b"})
	st.PutProduct(&entity.Product{ID: "a"})
	st.PutBalance(&entity.StockAreaProduct{ID: "row-2", ProductID: "b", AreaID: "x", Quantity: d("1")})
	st.PutBalance(&entity.StockAreaProduct{ID: "row-1", ProductID: "a", AreaID: "x", Quantity: d("1")})

	err := st.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		if _, err := r.Products.GetManyForUpdate(ctx, []string{"b", "a", "b"}); err != nil {
			return err
		}
		rows, err := r.Balances.LockForUpdate(ctx, []entity.BalanceKey{{ProductID: "b", AreaID: "x"}, {ProductID: "a", AreaID: "x"}})
		if err != nil {
			return err
		}
		require.Len(t, rows, 2)
		return r.Balances.Delete(ctx, rows[0].ID)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"product:a", "product:b", "balance:row-1", "balance:row-2"}, st.LastLocks())
	row, err := st.Balances().Get(ctx, "a", "x")
	require.NoError(t, err)
	assert.Nil(t, row, "la fila eliminada en la tx no existe tras el commit")
}

func TestMovements_SumAccountableYMarkReversed(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	repo := st.Movements()

	in := &entity.StockMovement{ProductID: "p", AreaID: "a", Quantity: d("10"), Accountable: true}
	require.NoError(t, repo.Append(ctx, in))
	require.NoError(t, repo.Append(ctx, &entity.StockMovement{ProductID: "p", AreaID: "a", Quantity: d("-3"), Accountable: true}))
	require.NotEmpty(t, in.ID)

	sum, _ := repo.SumAccountable(ctx, "p", "a")
	assert.True(t, sum.Equal(d("7")))

	require.NoError(t, repo.MarkReversed(ctx, in.ID, "rem-1"))
	sum, _ = repo.SumAccountable(ctx, "p", "a")
	assert.True(t, sum.Equal(d("-3")))

	got, _ := repo.GetByID(ctx, in.ID)
	require.NotNil(t, got.RemovedOperationID)
	assert.Equal(t, "rem-1", *got.RemovedOperationID)
	assert.False(t, got.Accountable)

	list, _ := repo.ListByProduct(ctx, "p", 1, 0)
	require.Len(t, list, 1)
	assert.True(t, list[0].Quantity.Equal(d("-3")), "más reciente primero")
}
