package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional de las rutas que escriben en el libro.
const HeaderIdempotencyKey = "Idempotency-Key"

// idempotencyStore es el contrato mínimo que necesita el middleware.
// Lo implementa *cache.IdempotencyStore.
type idempotencyStore interface {
	Reserve(ctx context.Context, businessID, key string) error
	Release(ctx context.Context, businessID, key string) error
}

// RequireIdempotency reserva la Idempotency-Key antes de ejecutar el handler. Debe usarse DESPUÉS
// de AuthMiddleware (la llave se aísla por negocio).
//
// Comportamiento:
//   - Sin cabecera → pasa sin reservar.
//   - 409 Conflict → la llave ya fue usada dentro del TTL.
//   - 503 Service Unavailable → no se pudo consultar Redis.
//   - Si el handler termina con error (status >= 400) la llave se libera para permitir el reintento.
func RequireIdempotency(store idempotencyStore, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		businessID := GetBusinessID(c)
		if err := store.Reserve(c.UserContext(), businessID, key); err != nil {
			if errors.Is(err, cache.ErrKeyInUse) {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Status:  fiber.StatusConflict,
					Code:    "IDEMPOTENCY_KEY_IN_USE",
					Message: "la operación con esta Idempotency-Key ya fue recibida",
				})
			}
			log.Warn().Err(err).Str("business_id", businessID).Msg("reservar idempotency key")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Status:  fiber.StatusServiceUnavailable,
				Code:    "IDEMPOTENCY_CHECK_FAILED",
				Message: "no se pudo verificar la Idempotency-Key, intente más tarde",
			})
		}

		err := c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			// El contexto de la petición puede estar cancelado; la liberación no debe perderse.
			if rerr := store.Release(context.WithoutCancel(c.UserContext()), businessID, key); rerr != nil {
				log.Warn().Err(rerr).Str("business_id", businessID).Msg("liberar idempotency key")
			}
		}
		return err
	}
}
