package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType clasifica cómo se maneja el stock y el costo de un producto.
type ProductType string

// Tipos de producto.
const (
	ProductTypeStock     ProductType = "STOCK"     // con control de stock
	ProductTypeCombo     ProductType = "COMBO"     // suma de productos compuestos
	ProductTypeMenu      ProductType = "MENU"      // elaborado a partir de receta o insumos
	ProductTypeVariation ProductType = "VARIATION" // con variaciones (talla, color...)
	ProductTypeWaste     ProductType = "WASTE"
	ProductTypeAsset     ProductType = "ASSET"
	ProductTypeService   ProductType = "SERVICE"
)

// Product representa un producto del negocio.
// AverageCost es derivado (costo promedio ponderado o calculado por la cola de propagación);
// TotalQuantity es la suma desnormalizada de los balances por área.
type Product struct {
	ID            string
	BusinessID    string
	Name          string
	Type          ProductType
	AverageCost   decimal.Decimal
	TotalQuantity decimal.Decimal
	// IsCostDefined indica que el costo lo fija una receta, lista de insumos o composición
	// y no se re-promedia con las entradas.
	IsCostDefined bool
	// Performance es el divisor de rendimiento al costear desde insumos (0 se trata como 1).
	Performance decimal.Decimal
	RecipeID    *string
	// StockLimit indica que el producto limita la disponibilidad de los combos que lo usan.
	StockLimit bool
	AlertLimit *decimal.Decimal
	// Availability es la disponibilidad calculada de un combo; nil significa ilimitada.
	Availability     *decimal.Decimal
	UnderAlert       bool
	IsManufacturable bool
	OnlineSellable   bool
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCombo indica si el producto es un combo.
func (p *Product) IsCombo() bool { return p.Type == ProductTypeCombo }

// TracksStock indica si el producto lleva balance por área.
func (p *Product) TracksStock() bool {
	switch p.Type {
	case ProductTypeStock, ProductTypeVariation, ProductTypeMenu, ProductTypeWaste, ProductTypeAsset:
		return true
	}
	return false
}

// Yield devuelve el divisor de rendimiento, 1 cuando no está definido.
func (p *Product) Yield() decimal.Decimal {
	if p.Performance.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(1)
	}
	return p.Performance
}

// ProductFlags agrupa los indicadores que recalcula RecheckSellability.
type ProductFlags struct {
	UnderAlert       bool
	IsManufacturable bool
	OnlineSellable   bool
}
