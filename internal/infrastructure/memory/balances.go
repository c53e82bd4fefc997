package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type balanceRepo struct{ scope }

func (r balanceRepo) LockForUpdate(_ context.Context, keys []entity.BalanceKey) ([]*entity.StockAreaProduct, error) {
	var out []*entity.StockAreaProduct
	r.read(func(s *state) {
		seen := map[string]bool{}
		for _, k := range keys {
			id, ok := s.balanceByKey[k]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, s.balances[id].Clone())
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	for _, row := range out {
		r.lock("balance:" + row.ID)
	}
	return out, nil
}

func (r balanceRepo) Get(_ context.Context, productID, areaID string) (*entity.StockAreaProduct, error) {
	var out *entity.StockAreaProduct
	r.read(func(s *state) {
		if id, ok := s.balanceByKey[entity.BalanceKey{ProductID: productID, AreaID: areaID}]; ok {
			out = s.balances[id].Clone()
		}
	})
	return out, nil
}

func (r balanceRepo) Save(_ context.Context, row *entity.StockAreaProduct) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	row.UpdatedAt = time.Now()
	return r.write(func(s *state) error {
		s.balances[row.ID] = row.Clone()
		s.balanceByKey[row.Key()] = row.ID
		return nil
	})
}

func (r balanceRepo) Delete(_ context.Context, id string) error {
	return r.write(func(s *state) error {
		if row, ok := s.balances[id]; ok {
			delete(s.balanceByKey, row.Key())
			delete(s.balances, id)
		}
		return nil
	})
}

func (r balanceRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockAreaProduct, error) {
	return r.list(func(row *entity.StockAreaProduct) bool { return row.ProductID == productID }), nil
}

func (r balanceRepo) ListByArea(_ context.Context, areaID string) ([]*entity.StockAreaProduct, error) {
	return r.list(func(row *entity.StockAreaProduct) bool { return row.AreaID == areaID }), nil
}

func (r balanceRepo) list(match func(*entity.StockAreaProduct) bool) []*entity.StockAreaProduct {
	var out []*entity.StockAreaProduct
	r.read(func(s *state) {
		for _, row := range s.balances {
			if match(row) {
				out = append(out, row.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].AreaID < out[j].AreaID
	})
	return out
}
