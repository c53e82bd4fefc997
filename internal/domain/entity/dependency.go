package entity

import "github.com/shopspring/decimal"

// Supply arista del grafo de insumos: BaseProductID consume Quantity de SupplyProductID.
type Supply struct {
	BaseProductID   string
	SupplyProductID string
	Quantity        decimal.Decimal
}

// FixedCost costo fijo asociado a la elaboración de un producto.
type FixedCost struct {
	ProductID string
	Name      string
	Amount    decimal.Decimal
}

// ComposedItem arista del grafo de combos: el combo se compone de Quantity de ComposedID.
type ComposedItem struct {
	ComboID    string
	ComposedID string
	Quantity   decimal.Decimal
}

// Recipe receta que consume materias primas y rinde Performance unidades.
type Recipe struct {
	ID          string
	BusinessID  string
	Name        string
	Performance decimal.Decimal
	UnitCost    decimal.Decimal
	Raws        []RecipeRaw
}

// RecipeRaw materia prima de una receta.
type RecipeRaw struct {
	ProductID string
	Quantity  decimal.Decimal
}
