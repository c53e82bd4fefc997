package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type productRepo struct{ scope }

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.read(func(s *state) { out = copyProduct(s.products[id]) })
	return out, nil
}

func (r productRepo) GetManyForUpdate(_ context.Context, ids []string) ([]*entity.Product, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []*entity.Product
	r.read(func(s *state) {
		prev := ""
		for _, id := range sorted {
			if id == prev {
				continue
			}
			prev = id
			if p, ok := s.products[id]; ok {
				r.lock("product:" + id)
				out = append(out, copyProduct(p))
			}
		}
	})
	return out, nil
}

func (r productRepo) update(id string, fn func(p *entity.Product)) error {
	return r.write(func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		fn(p)
		p.UpdatedAt = time.Now()
		return nil
	})
}

func (r productRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	return r.update(productID, func(p *entity.Product) { p.AverageCost = cost })
}

func (r productRepo) UpdateTotalQuantity(_ context.Context, productID string, qty decimal.Decimal) error {
	return r.update(productID, func(p *entity.Product) { p.TotalQuantity = qty })
}

func (r productRepo) UpdateAvailability(_ context.Context, productID string, availability *decimal.Decimal) error {
	var v *decimal.Decimal
	if availability != nil {
		a := *availability
		v = &a
	}
	return r.update(productID, func(p *entity.Product) { p.Availability = v })
}

func (r productRepo) UpdateFlags(_ context.Context, productID string, flags entity.ProductFlags) error {
	return r.update(productID, func(p *entity.Product) {
		p.UnderAlert = flags.UnderAlert
		p.IsManufacturable = flags.IsManufacturable
		p.OnlineSellable = flags.OnlineSellable
	})
}

func (r productRepo) ListBelowAlert(_ context.Context, businessID string) ([]*entity.Product, error) {
	var out []*entity.Product
	r.read(func(s *state) {
		for _, p := range s.products {
			if p.BusinessID != businessID || p.DeletedAt != nil || p.AlertLimit == nil || !p.TracksStock() {
				continue
			}
			if p.TotalQuantity.LessThan(*p.AlertLimit) {
				out = append(out, copyProduct(p))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type areaRepo struct{ scope }

func (r areaRepo) GetByID(_ context.Context, id string) (*entity.Area, error) {
	var out *entity.Area
	r.read(func(s *state) {
		if a, ok := s.areas[id]; ok {
			c := *a
			out = &c
		}
	})
	return out, nil
}
