package entity

import "time"

// AreaType tipo de área del negocio.
type AreaType string

// Tipos de área.
const (
	AreaTypeStock       AreaType = "STOCK"
	AreaTypeSale        AreaType = "POINT_OF_SALE"
	AreaTypeProcessing  AreaType = "PROCESSING"
	AreaTypeAccessPoint AreaType = "ACCESSPOINT"
)

// Area representa una ubicación física o lógica. Solo las áreas STOCK agregan balance.
type Area struct {
	ID         string
	BusinessID string
	Name       string
	Type       AreaType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HoldsStock indica si el área es una unidad de agregación de balance.
func (a *Area) HoldsStock() bool { return a.Type == AreaTypeStock }
