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

type dependencyRepo struct{ scope }

func (r dependencyRepo) ListSupplies(_ context.Context, productID string) ([]entity.Supply, error) {
	var out []entity.Supply
	r.read(func(s *state) {
		for _, sp := range s.supplies {
			if sp.BaseProductID == productID {
				out = append(out, sp)
			}
		}
	})
	return out, nil
}

func (r dependencyRepo) ListFixedCosts(_ context.Context, productID string) ([]entity.FixedCost, error) {
	var out []entity.FixedCost
	r.read(func(s *state) {
		for _, f := range s.fixedCosts {
			if f.ProductID == productID {
				out = append(out, f)
			}
		}
	})
	return out, nil
}

func (r dependencyRepo) ListComposition(_ context.Context, comboID string) ([]entity.ComposedItem, error) {
	var out []entity.ComposedItem
	r.read(func(s *state) {
		for _, it := range s.composition {
			if it.ComboID == comboID {
				out = append(out, it)
			}
		}
	})
	return out, nil
}

func (r dependencyRepo) GetRecipe(_ context.Context, recipeID string) (*entity.Recipe, error) {
	var out *entity.Recipe
	r.read(func(s *state) {
		if rc, ok := s.recipes[recipeID]; ok {
			c := *rc
			c.Raws = append([]entity.RecipeRaw(nil), rc.Raws...)
			out = &c
		}
	})
	return out, nil
}

func (r dependencyRepo) UpdateRecipeUnitCost(_ context.Context, recipeID string, cost decimal.Decimal) error {
	return r.write(func(s *state) error {
		rc, ok := s.recipes[recipeID]
		if !ok {
			return fmt.Errorf("%w: receta %s", domain.ErrNotFound, recipeID)
		}
		rc.UnitCost = cost
		return nil
	})
}

func (r dependencyRepo) ListProductsByRecipe(_ context.Context, recipeID string) ([]string, error) {
	var out []string
	r.read(func(s *state) {
		for _, p := range s.products {
			if p.RecipeID != nil && *p.RecipeID == recipeID && p.DeletedAt == nil {
				out = append(out, p.ID)
			}
		}
	})
	sort.Strings(out)
	return out, nil
}

func (r dependencyRepo) ListSupplyDependents(_ context.Context, supplyProductID string) ([]string, error) {
	var out []string
	r.read(func(s *state) {
		for _, sp := range s.supplies {
			if sp.SupplyProductID == supplyProductID {
				out = append(out, sp.BaseProductID)
			}
		}
	})
	return out, nil
}

func (r dependencyRepo) ListCombosContaining(_ context.Context, productID string) ([]string, error) {
	var out []string
	r.read(func(s *state) {
		for _, it := range s.composition {
			if it.ComposedID == productID {
				out = append(out, it.ComboID)
			}
		}
	})
	return out, nil
}

func (r dependencyRepo) ListRecipesUsing(_ context.Context, productID string) ([]string, error) {
	var out []string
	r.read(func(s *state) {
		for _, rc := range s.recipes {
			for _, raw := range rc.Raws {
				if raw.ProductID == productID {
					out = append(out, rc.ID)
					break
				}
			}
		}
	})
	sort.Strings(out)
	return out, nil
}

type orderRepo struct{ scope }

func (r orderRepo) GetStateForUpdate(_ context.Context, orderID, productID string) (*entity.ManufacturingState, error) {
	var out *entity.ManufacturingState
	r.read(func(s *state) {
		if st, ok := s.orders[orderKey{orderID, productID}]; ok {
			c := *st
			out = &c
		}
	})
	if out != nil {
		r.lock("order:" + orderID + "/" + productID)
	}
	return out, nil
}

func (r orderRepo) SaveState(_ context.Context, st *entity.ManufacturingState) error {
	st.UpdatedAt = time.Now()
	return r.write(func(s *state) error {
		c := *st
		s.orders[orderKey{st.ProductionOrderID, st.ProductID}] = &c
		return nil
	})
}

type settingsRepo struct{ scope }

func (r settingsRepo) Get(_ context.Context, businessID, key string) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	r.read(func(s *state) {
		v, ok = s.settings[businessID][key]
	})
	return v, ok, nil
}
