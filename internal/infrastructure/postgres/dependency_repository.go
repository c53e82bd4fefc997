package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.DependencyRepository = (*DependencyRepo)(nil)

// DependencyRepo grafos de insumos, combos y recetas sobre PostgreSQL.
type DependencyRepo struct {
	q Querier
}

// NewDependencyRepository construye el adaptador de dependencias.
func NewDependencyRepository(q Querier) *DependencyRepo {
	return &DependencyRepo{q: q}
}

// ListSupplies insumos de un producto.
func (r *DependencyRepo) ListSupplies(ctx context.Context, productID string) ([]entity.Supply, error) {
	rows, err := r.q.Query(ctx, `SELECT base_product_id, supply_product_id, quantity FROM supplies
		WHERE base_product_id = $1 ORDER BY supply_product_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()
	var list []entity.Supply
	for rows.Next() {
		var s entity.Supply
		if err := rows.Scan(&s.BaseProductID, &s.SupplyProductID, &s.Quantity); err != nil {
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListFixedCosts costos fijos de elaboración de un producto.
func (r *DependencyRepo) ListFixedCosts(ctx context.Context, productID string) ([]entity.FixedCost, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, name, amount FROM fixed_costs WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list fixed costs: %w", err)
	}
	defer rows.Close()
	var list []entity.FixedCost
	for rows.Next() {
		var f entity.FixedCost
		if err := rows.Scan(&f.ProductID, &f.Name, &f.Amount); err != nil {
			return nil, fmt.Errorf("scan fixed cost: %w", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// ListComposition productos que componen un combo.
func (r *DependencyRepo) ListComposition(ctx context.Context, comboID string) ([]entity.ComposedItem, error) {
	rows, err := r.q.Query(ctx, `SELECT combo_id, composed_id, quantity FROM composed_items
		WHERE combo_id = $1 ORDER BY composed_id`, comboID)
	if err != nil {
		return nil, fmt.Errorf("list composition: %w", err)
	}
	defer rows.Close()
	var list []entity.ComposedItem
	for rows.Next() {
		var it entity.ComposedItem
		if err := rows.Scan(&it.ComboID, &it.ComposedID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan composed item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// GetRecipe receta con sus materias primas.
func (r *DependencyRepo) GetRecipe(ctx context.Context, recipeID string) (*entity.Recipe, error) {
	var rc entity.Recipe
	err := r.q.QueryRow(ctx, `SELECT id, business_id, name, performance, unit_cost FROM recipes WHERE id = $1`, recipeID).
		Scan(&rc.ID, &rc.BusinessID, &rc.Name, &rc.Performance, &rc.UnitCost)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT product_id, quantity FROM recipe_raws WHERE recipe_id = $1 ORDER BY product_id`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list recipe raws: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw entity.RecipeRaw
		if err := rows.Scan(&raw.ProductID, &raw.Quantity); err != nil {
			return nil, fmt.Errorf("scan recipe raw: %w", err)
		}
		rc.Raws = append(rc.Raws, raw)
	}
	return &rc, rows.Err()
}

// UpdateRecipeUnitCost fija el costo unitario calculado de una receta.
func (r *DependencyRepo) UpdateRecipeUnitCost(ctx context.Context, recipeID string, cost decimal.Decimal) error {
	if _, err := r.q.Exec(ctx, `UPDATE recipes SET unit_cost = $2 WHERE id = $1`, recipeID, cost); err != nil {
		return fmt.Errorf("update recipe cost: %w", err)
	}
	return nil
}

// ListProductsByRecipe productos activos ligados a una receta.
func (r *DependencyRepo) ListProductsByRecipe(ctx context.Context, recipeID string) ([]string, error) {
	return r.ids(ctx, `SELECT id FROM products WHERE recipe_id = $1 AND deleted_at IS NULL ORDER BY id`, recipeID)
}

// ListSupplyDependents productos que consumen el insumo dado.
func (r *DependencyRepo) ListSupplyDependents(ctx context.Context, supplyProductID string) ([]string, error) {
	return r.ids(ctx, `SELECT base_product_id FROM supplies WHERE supply_product_id = $1 ORDER BY base_product_id`, supplyProductID)
}

// ListCombosContaining combos que incluyen el producto.
func (r *DependencyRepo) ListCombosContaining(ctx context.Context, productID string) ([]string, error) {
	return r.ids(ctx, `SELECT combo_id FROM composed_items WHERE composed_id = $1 ORDER BY combo_id`, productID)
}

// ListRecipesUsing recetas que usan el producto como materia prima.
func (r *DependencyRepo) ListRecipesUsing(ctx context.Context, productID string) ([]string, error) {
	return r.ids(ctx, `SELECT DISTINCT recipe_id FROM recipe_raws WHERE product_id = $1 ORDER BY recipe_id`, productID)
}

func (r *DependencyRepo) ids(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list dependency ids: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dependency id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
