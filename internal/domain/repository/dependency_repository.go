package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DependencyRepository grafos de dependencia entre productos: insumos, combos y recetas.
type DependencyRepository interface {
	ListSupplies(ctx context.Context, productID string) ([]entity.Supply, error)
	ListFixedCosts(ctx context.Context, productID string) ([]entity.FixedCost, error)
	ListComposition(ctx context.Context, comboID string) ([]entity.ComposedItem, error)
	// GetRecipe devuelve la receta con sus materias primas, (nil, nil) si no existe.
	GetRecipe(ctx context.Context, recipeID string) (*entity.Recipe, error)
	UpdateRecipeUnitCost(ctx context.Context, recipeID string, cost decimal.Decimal) error
	ListProductsByRecipe(ctx context.Context, recipeID string) ([]string, error)

	// Aristas inversas.
	ListSupplyDependents(ctx context.Context, supplyProductID string) ([]string, error)
	ListCombosContaining(ctx context.Context, productID string) ([]string, error)
	ListRecipesUsing(ctx context.Context, productID string) ([]string, error)
}
