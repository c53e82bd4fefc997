package http

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// HeaderEconomicCycle cabecera opcional con el ciclo económico al que se imputan los movimientos.
const HeaderEconomicCycle = "X-Economic-Cycle-Id"

type ledgerService interface {
	Execute(ctx context.Context, op inventory.OperationContext, cmd inventory.Command) ([]*entity.StockMovement, error)
	Reverse(ctx context.Context, op inventory.OperationContext, movementID, description string) ([]*entity.StockMovement, error)
}

type queryService interface {
	GetMovement(ctx context.Context, op inventory.OperationContext, id string) (*entity.StockMovement, error)
	ListProductMovements(ctx context.Context, op inventory.OperationContext, productID string, page dto.PageRequest) ([]*entity.StockMovement, error)
	Stock(ctx context.Context, op inventory.OperationContext, productID, areaID string) ([]*entity.StockAreaProduct, error)
	Consistency(ctx context.Context, op inventory.OperationContext, productID, areaID string) (dto.ConsistencyDTO, error)
}

type replenishmentService interface {
	GenerateReplenishmentList(ctx context.Context, op inventory.OperationContext) ([]dto.ReplenishmentSuggestionDTO, error)
}

// InventoryHandler maneja las peticiones HTTP del libro de movimientos (protegido).
type InventoryHandler struct {
	ledger        ledgerService
	query         queryService
	replenishment replenishmentService
	validate      *validator.Validate
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger ledgerService, query queryService, replenishment replenishmentService, v *validator.Validate) *InventoryHandler {
	if v == nil {
		v = NewValidator()
	}
	return &InventoryHandler{ledger: ledger, query: query, replenishment: replenishment, validate: v}
}

// operationContext identidad del llamador tomada del token.
func operationContext(c *fiber.Ctx) (inventory.OperationContext, bool) {
	op := inventory.OperationContext{BusinessID: GetBusinessID(c), UserID: GetUserID(c)}
	if cycle := c.Get(HeaderEconomicCycle); cycle != "" {
		op.EconomicCycleID = &cycle
	}
	return op, op.BusinessID != "" && op.UserID != ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Status: fiber.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "token inválido"})
}

// execute corre el comando y responde 201 con las filas creadas.
func (h *InventoryHandler) execute(c *fiber.Ctx, op inventory.OperationContext, cmd inventory.Command) error {
	rows, err := h.ledger.Execute(c.UserContext(), op, cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"total":     len(rows),
		"movements": dto.NewMovementDTOs(rows),
	})
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  ENTRY, OUT, WASTE, ADJUST o SALE de un producto en un área de stock.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "llave de reintento"
// @Param        body             body    dto.MovementRequest  true   "movimiento"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.MovementRequest
	if e := parseBody(c, h.validate, &in); e != nil {
		return c.Status(e.Status).JSON(e)
	}
	cmd, err := inventory.CommandFromMovement(in)
	if err != nil {
		return writeError(c, err)
	}
	return h.execute(c, op, cmd)
}

// RegisterBulk godoc
// @Summary      Registrar movimientos en lote
// @Description  Todos los productos comparten la operación y el área. Si una línea falla no se escribe ninguna.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkMovementRequest  true  "lote"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/bulk [post]
func (h *InventoryHandler) RegisterBulk(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.BulkMovementRequest
	if e := parseBody(c, h.validate, &in); e != nil {
		return c.Status(e.Status).JSON(e)
	}
	cmd, err := inventory.CommandFromBulk(in)
	if err != nil {
		return writeError(c, err)
	}
	return h.execute(c, op, cmd)
}

// Transfer godoc
// @Summary      Trasladar stock entre áreas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "traslado simple o con products[]"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if e := parseBody(c, h.validate, &in); e != nil {
		return c.Status(e.Status).JSON(e)
	}
	return h.execute(c, op, inventory.CommandFromTransfer(in))
}

// Transform godoc
// @Summary      Transformar un producto en otro
// @Description  Consume el producto base y produce el transformado con el costo derivado de la fracción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransformationRequest  true  "transformación"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/transformations [post]
func (h *InventoryHandler) Transform(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransformationRequest
	if e := parseBody(c, h.validate, &in); e != nil {
		return c.Status(e.Status).JSON(e)
	}
	return h.execute(c, op, inventory.CommandFromTransformation(in))
}

// Process godoc
// @Summary      Elaborar un producto
// @Description  Consume los insumos (explícitos, del producto o de su receta) y registra la entrada del elaborado.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessingRequest  true  "elaboración"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/processing [post]
func (h *InventoryHandler) Process(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ProcessingRequest
	if e := parseBody(c, h.validate, &in); e != nil {
		return c.Status(e.Status).JSON(e)
	}
	return h.execute(c, op, inventory.CommandFromProcessing(in))
}

// Reverse godoc
// @Summary      Revertir un movimiento
// @Description  Solo movimientos raíz no revertidos. Devuelve las filas REMOVED creadas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "id del movimiento raíz"
// @Param        body  body  dto.ReverseRequest  false  "descripción"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/reverse [post]
func (h *InventoryHandler) Reverse(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReverseRequest
	if len(c.Body()) > 0 {
		if e := parseBody(c, h.validate, &in); e != nil {
			return c.Status(e.Status).JSON(e)
		}
	}
	rows, err := h.ledger.Reverse(c.UserContext(), op, c.Params("id"), in.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"total":     len(rows),
		"movements": dto.NewMovementDTOs(rows),
	})
}

// GetMovement godoc
// @Summary      Obtener un movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id del movimiento"
// @Success      200  {object}  dto.MovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	m, err := h.query.GetMovement(c.UserContext(), op, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementDTO(m))
}

// ListProductMovements godoc
// @Summary      Movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "id del producto"
// @Param        limit   query  int     false  "máximo 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListProductMovements(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()
	if err := h.validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Status: fiber.StatusBadRequest, Code: "VALIDATION", Message: validationMessage(err)})
	}
	rows, err := h.query.ListProductMovements(c.UserContext(), op, c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"movements": dto.NewMovementDTOs(rows),
		"page":      page.Response(len(rows)),
	})
}

// GetStock godoc
// @Summary      Balances por área
// @Description  Filtra por producto, por área o por ambos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "producto"
// @Param        area_id     query  string  false  "área"
// @Success      200  {array}   dto.BalanceDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	rows, err := h.query.Stock(c.UserContext(), op, c.Query("product_id"), c.Query("area_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewBalanceDTOs(rows))
}

// GetConsistency godoc
// @Summary      Verificar libro contra balance
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "producto"
// @Param        area_id     query  string  true  "área"
// @Success      200  {object}  dto.ConsistencyDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/consistency [get]
func (h *InventoryHandler) GetConsistency(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.query.Consistency(c.UserContext(), op, c.Query("product_id"), c.Query("area_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos por debajo de su límite de alerta con la cantidad sugerida de pedido.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	op, ok := operationContext(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), op)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
