package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKey identifica un balance por producto y área.
type BalanceKey struct {
	ProductID string
	AreaID    string
}

// StockAreaProduct es la proyección del balance actual de un producto en un área STOCK.
// Cuando hay variaciones, la suma de Variations es igual a Quantity.
type StockAreaProduct struct {
	ID         string
	BusinessID string
	ProductID  string
	AreaID     string
	Quantity   decimal.Decimal
	Variations []StockAreaVariation
	UpdatedAt  time.Time
}

// StockAreaVariation sub-balance de una variación dentro del mismo balance.
type StockAreaVariation struct {
	VariationID string
	Quantity    decimal.Decimal
}

// Key devuelve la clave del balance.
func (s *StockAreaProduct) Key() BalanceKey {
	return BalanceKey{ProductID: s.ProductID, AreaID: s.AreaID}
}

// Clone devuelve una copia profunda del balance.
func (s *StockAreaProduct) Clone() *StockAreaProduct {
	c := *s
	c.Variations = append([]StockAreaVariation(nil), s.Variations...)
	return &c
}
