package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementRequest body para POST /api/inventory/movements.
type MovementRequest struct {
	Operation   string           `json:"operation" validate:"required,oneof=ENTRY OUT WASTE ADJUST SALE"`
	ProductID   string           `json:"product_id" validate:"required"`
	VariationID *string          `json:"variation_id,omitempty"`
	AreaID      string           `json:"area_id" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Currency    string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	Description string           `json:"description,omitempty" validate:"max=500"`
}

// MovementItem un producto dentro de una operación en lote.
type MovementItem struct {
	ProductID   string           `json:"product_id" validate:"required"`
	VariationID *string          `json:"variation_id,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// BulkMovementRequest body para POST /api/inventory/movements/bulk.
type BulkMovementRequest struct {
	Operation   string         `json:"operation" validate:"required,oneof=ENTRY OUT WASTE ADJUST SALE"`
	Products    []MovementItem `json:"products" validate:"required,min=1,dive"`
	StockAreaID string         `json:"stock_area_id" validate:"required"`
	Currency    string         `json:"currency,omitempty" validate:"omitempty,len=3"`
	Description string         `json:"description,omitempty" validate:"max=500"`
}

// TransferRequest body para POST /api/inventory/transfers. Con Products se trasladan varios productos.
type TransferRequest struct {
	AreaID      string          `json:"area_id" validate:"required"`
	MovedToID   string          `json:"moved_to_id" validate:"required"`
	ProductID   string          `json:"product_id,omitempty" validate:"required_without=Products"`
	VariationID *string         `json:"variation_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Products    []MovementItem  `json:"products,omitempty" validate:"omitempty,dive"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

// TransformationRequest body para POST /api/inventory/transformations.
type TransformationRequest struct {
	AreaID                 string          `json:"area_id" validate:"required"`
	MovedToID              string          `json:"moved_to_id,omitempty"`
	BaseProductID          string          `json:"base_product_id" validate:"required"`
	BaseVariationID        *string         `json:"base_variation_id,omitempty"`
	Quantity               decimal.Decimal `json:"quantity"`
	TransformedProductID   string          `json:"transformed_product_id" validate:"required,nefield=BaseProductID"`
	TransformedVariationID *string         `json:"transformed_variation_id,omitempty"`
	TransformedQuantity    decimal.Decimal `json:"transformed_quantity"`
	Fraction               decimal.Decimal `json:"fraction"`
	Description            string          `json:"description,omitempty" validate:"max=500"`
}

// ProcessingRequest body para POST /api/inventory/processing. Sin Inputs se usan los insumos o la
// receta del producto.
type ProcessingRequest struct {
	AreaID            string          `json:"area_id" validate:"required"`
	MovedToID         string          `json:"moved_to_id" validate:"required"`
	ProductID         string          `json:"product_id" validate:"required"`
	VariationID       *string         `json:"variation_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	Inputs            []MovementItem  `json:"inputs,omitempty" validate:"omitempty,dive"`
	ProductionOrderID *string         `json:"production_order_id,omitempty"`
	Description       string          `json:"description,omitempty" validate:"max=500"`
}

// ReverseRequest body opcional para POST /api/inventory/movements/:id/reverse.
type ReverseRequest struct {
	Description string `json:"description,omitempty" validate:"max=500"`
}

// MovementDTO fila del libro de movimientos.
type MovementDTO struct {
	ID                  string           `json:"id"`
	Operation           string           `json:"operation"`
	ProductID           string           `json:"product_id"`
	VariationID         *string          `json:"variation_id,omitempty"`
	AreaID              string           `json:"area_id"`
	MovedToID           *string          `json:"moved_to_id,omitempty"`
	ParentID            *string          `json:"parent_id,omitempty"`
	Quantity            decimal.Decimal  `json:"quantity"`
	CostBeforeOperation decimal.Decimal  `json:"cost_before_operation"`
	UnitCost            decimal.Decimal  `json:"unit_cost"`
	Price               *decimal.Decimal `json:"price,omitempty"`
	Accountable         bool             `json:"accountable"`
	RemovedOperationID  *string          `json:"removed_operation_id,omitempty"`
	EconomicCycleID     *string          `json:"economic_cycle_id,omitempty"`
	ProductionOrderID   *string          `json:"production_order_id,omitempty"`
	Description         string           `json:"description,omitempty"`
	CreatedBy           string           `json:"created_by"`
	CreatedAt           time.Time        `json:"created_at"`
}

// NewMovementDTO mapea la entidad a su representación HTTP.
func NewMovementDTO(m *entity.StockMovement) MovementDTO {
	return MovementDTO{
		ID:                  m.ID,
		Operation:           string(m.Operation),
		ProductID:           m.ProductID,
		VariationID:         m.VariationID,
		AreaID:              m.AreaID,
		MovedToID:           m.MovedToID,
		ParentID:            m.ParentID,
		Quantity:            m.Quantity,
		CostBeforeOperation: m.CostBeforeOperation,
		UnitCost:            m.UnitCost,
		Price:               m.Price,
		Accountable:         m.Accountable,
		RemovedOperationID:  m.RemovedOperationID,
		EconomicCycleID:     m.EconomicCycleID,
		ProductionOrderID:   m.ProductionOrderID,
		Description:         m.Description,
		CreatedBy:           m.CreatedBy,
		CreatedAt:           m.CreatedAt,
	}
}

// NewMovementDTOs mapea una lista de movimientos.
func NewMovementDTOs(ms []*entity.StockMovement) []MovementDTO {
	out := make([]MovementDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewMovementDTO(m))
	}
	return out
}

// VariationBalanceDTO sub-balance de una variación.
type VariationBalanceDTO struct {
	VariationID string          `json:"variation_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// BalanceDTO balance de un producto en un área.
type BalanceDTO struct {
	ID         string                `json:"id"`
	ProductID  string                `json:"product_id"`
	AreaID     string                `json:"area_id"`
	Quantity   decimal.Decimal       `json:"quantity"`
	Variations []VariationBalanceDTO `json:"variations,omitempty"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// NewBalanceDTOs mapea balances.
func NewBalanceDTOs(rows []*entity.StockAreaProduct) []BalanceDTO {
	out := make([]BalanceDTO, 0, len(rows))
	for _, r := range rows {
		b := BalanceDTO{ID: r.ID, ProductID: r.ProductID, AreaID: r.AreaID, Quantity: r.Quantity, UpdatedAt: r.UpdatedAt}
		for _, v := range r.Variations {
			b.Variations = append(b.Variations, VariationBalanceDTO{VariationID: v.VariationID, Quantity: v.Quantity})
		}
		out = append(out, b)
	}
	return out
}

// ConsistencyDTO compara la suma contable del libro con el balance proyectado.
type ConsistencyDTO struct {
	ProductID  string          `json:"product_id"`
	AreaID     string          `json:"area_id"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Balance    decimal.Decimal `json:"balance"`
	Consistent bool            `json:"consistent"`
}

// ReplenishmentSuggestionDTO producto por debajo de su límite de alerta con la cantidad sugerida.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	AlertLimit         decimal.Decimal `json:"alert_limit"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // AlertLimit * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
