package domain

import (
	"errors"
	"net/http"
)

// Errores de validación: se rechazan antes de escribir; la transacción hace rollback.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidQuantity     = errors.New("la cantidad debe ser mayor que cero")
	ErrSameArea            = errors.New("el área origen y destino deben ser distintas")
	ErrInvalidArea         = errors.New("el área no admite movimientos de stock")
	ErrDescriptionRequired = errors.New("la operación requiere una descripción")
	ErrNotRootMovement     = errors.New("solo se puede revertir el movimiento raíz")
	ErrAlreadyReversed     = errors.New("el movimiento ya fue revertido")
	ErrNotReversible       = errors.New("el tipo de movimiento no se puede revertir")
	ErrCurrencyMismatch    = errors.New("la moneda no coincide con la moneda de costo")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
)

// Errores de consistencia: abortan la transacción sin efectos parciales.
var (
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUndefinedCost     = errors.New("el producto no tiene costo definido")
)

// Errores de infraestructura: el cliente puede reintentar la operación completa.
var (
	ErrLockTimeout = errors.New("tiempo de espera de bloqueo agotado")
)

// StatusOf clasifica un error de dominio en un código HTTP.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyReversed):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrUndefinedCost):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrSameArea),
		errors.Is(err, ErrInvalidArea), errors.Is(err, ErrDescriptionRequired), errors.Is(err, ErrNotRootMovement),
		errors.Is(err, ErrNotReversible), errors.Is(err, ErrCurrencyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf devuelve el código corto usado en las respuestas de error.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrDuplicate):
		return "DUPLICATE"
	case errors.Is(err, ErrAlreadyReversed):
		return "ALREADY_REVERSED"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrUndefinedCost):
		return "UNDEFINED_COST"
	case errors.Is(err, ErrLockTimeout):
		return "LOCK_TIMEOUT"
	case StatusOf(err) == http.StatusBadRequest:
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}
