package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type movementRepo struct{ scope }

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func (r movementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return r.write(func(s *state) error {
		if _, exists := s.movements[m.ID]; exists {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.ID)
		}
		s.movements[m.ID] = copyMovement(m)
		s.movementSeq = append(s.movementSeq, m.ID)
		return nil
	})
}

func (r movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	r.read(func(s *state) { out = copyMovement(s.movements[id]) })
	return out, nil
}

func (r movementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := r.GetByID(ctx, id)
	if m != nil {
		r.lock("movement:" + id)
	}
	return m, err
}

func (r movementRepo) ListChildren(_ context.Context, parentID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	r.read(func(s *state) {
		for _, id := range s.movementSeq {
			m := s.movements[id]
			if m.ParentID != nil && *m.ParentID == parentID && m.Operation != entity.OperationRemoved {
				out = append(out, copyMovement(m))
			}
		}
	})
	return out, nil
}

func (r movementRepo) MarkReversed(_ context.Context, id, removedOperationID string) error {
	return r.write(func(s *state) error {
		m, ok := s.movements[id]
		if !ok {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
		}
		removed := removedOperationID
		m.Accountable = false
		m.RemovedOperationID = &removed
		return nil
	})
}

func (r movementRepo) SumAccountable(_ context.Context, productID, areaID string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.read(func(s *state) {
		for _, id := range s.movementSeq {
			m := s.movements[id]
			if m.Accountable && m.ProductID == productID && m.AreaID == areaID {
				total = total.Add(m.Quantity)
			}
		}
	})
	return total, nil
}

func (r movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	r.read(func(s *state) {
		skipped := 0
		for i := len(s.movementSeq) - 1; i >= 0; i-- {
			m := s.movements[s.movementSeq[i]]
			if m.ProductID != productID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, copyMovement(m))
			if limit > 0 && len(out) >= limit {
				return
			}
		}
	})
	return out, nil
}
