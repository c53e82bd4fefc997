package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.LedgerUseCase
	Query         *inventory.QueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Idempotency   *cache.IdempotencyStore // nil = sin control de Idempotency-Key
	Metrics       prometheus.Gatherer     // nil = registro por defecto
	Validator     *validator.Validate
	JWTSecret     string
	ServiceName   string
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	gatherer := deps.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	var store idempotencyStore
	if deps.Idempotency != nil {
		store = deps.Idempotency
	}
	idem := RequireIdempotency(store, log.Component("idempotency"))
	writers := RequireRole(RoleAdmin, RoleBodeguero)

	h := NewInventoryHandler(deps.Ledger, deps.Query, deps.Replenishment, deps.Validator)
	inv := protected.Group("/inventory")

	inv.Post("/movements", RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor), idem, h.RegisterMovement)
	inv.Post("/movements/bulk", writers, idem, h.RegisterBulk)
	inv.Post("/transfers", writers, idem, h.Transfer)
	inv.Post("/transformations", writers, idem, h.Transform)
	inv.Post("/processing", writers, idem, h.Process)
	inv.Post("/movements/:id/reverse", RequireRole(RoleAdmin), idem, h.Reverse)

	inv.Get("/movements/:id", h.GetMovement)
	inv.Get("/products/:id/movements", h.ListProductMovements)
	inv.Get("/stock", h.GetStock)
	inv.Get("/consistency", h.GetConsistency)
	inv.Get("/replenishment-list", h.GetReplenishmentList)
}
