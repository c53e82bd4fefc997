package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Adaptadores de los request HTTP a comandos. Los usan los handlers.

// CommandFromMovement construye el comando de un movimiento simple.
func CommandFromMovement(in dto.MovementRequest) (Command, error) {
	line := Line{ProductID: in.ProductID, VariationID: in.VariationID, Quantity: in.Quantity, Price: in.Price}
	return singleAreaCommand(entity.Operation(in.Operation), in.AreaID, []Line{line}, in.Currency, in.Description)
}

// CommandFromBulk construye el comando de un lote de productos de la misma operación.
func CommandFromBulk(in dto.BulkMovementRequest) (Command, error) {
	return singleAreaCommand(entity.Operation(in.Operation), in.StockAreaID, linesFromItems(in.Products), in.Currency, in.Description)
}

// CommandFromTransfer construye el traslado simple o en lote.
func CommandFromTransfer(in dto.TransferRequest) TransferCommand {
	lines := linesFromItems(in.Products)
	if len(lines) == 0 {
		lines = []Line{{ProductID: in.ProductID, VariationID: in.VariationID, Quantity: in.Quantity}}
	}
	return TransferCommand{FromAreaID: in.AreaID, ToAreaID: in.MovedToID, Lines: lines, Description: in.Description}
}

// CommandFromTransformation construye la transformación.
func CommandFromTransformation(in dto.TransformationRequest) TransformCommand {
	return TransformCommand{
		AreaID:                 in.AreaID,
		ToAreaID:               in.MovedToID,
		BaseProductID:          in.BaseProductID,
		BaseVariationID:        in.BaseVariationID,
		Quantity:               in.Quantity,
		TransformedProductID:   in.TransformedProductID,
		TransformedVariationID: in.TransformedVariationID,
		TransformedQuantity:    in.TransformedQuantity,
		Fraction:               in.Fraction,
		Description:            in.Description,
	}
}

// CommandFromProcessing construye la elaboración.
func CommandFromProcessing(in dto.ProcessingRequest) ProcessCommand {
	return ProcessCommand{
		FromAreaID:        in.AreaID,
		ToAreaID:          in.MovedToID,
		ProductID:         in.ProductID,
		VariationID:       in.VariationID,
		ProducedQuantity:  in.Quantity,
		Inputs:            linesFromItems(in.Inputs),
		ProductionOrderID: in.ProductionOrderID,
		Description:       in.Description,
	}
}

func singleAreaCommand(op entity.Operation, areaID string, lines []Line, currency, description string) (Command, error) {
	switch op {
	case entity.OperationEntry:
		return EntryCommand{AreaID: areaID, Lines: lines, Currency: currency, Description: description}, nil
	case entity.OperationOut:
		return OutCommand{AreaID: areaID, Lines: lines, Description: description}, nil
	case entity.OperationWaste:
		return WasteCommand{AreaID: areaID, Lines: lines, Description: description}, nil
	case entity.OperationAdjust:
		return AdjustCommand{AreaID: areaID, Lines: lines, Description: description}, nil
	case entity.OperationSale:
		return SaleCommand{AreaID: areaID, Lines: lines, Description: description}, nil
	}
	return nil, fmt.Errorf("%w: operación %q no admitida en este endpoint", domain.ErrInvalidInput, op)
}

func linesFromItems(items []dto.MovementItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{ProductID: it.ProductID, VariationID: it.VariationID, Quantity: it.Quantity, Price: it.Price})
	}
	return lines
}
