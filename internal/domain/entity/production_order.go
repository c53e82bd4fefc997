package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManufacturingState cantidades planificadas y realizadas de un producto en una orden de producción.
type ManufacturingState struct {
	ProductionOrderID string
	ProductID         string
	Planned           decimal.Decimal
	Realized          decimal.Decimal
	UpdatedAt         time.Time
}
