package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// NewValidator validador de DTOs que reporta los campos con su nombre JSON.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeError responde con el status y código que corresponden al error de dominio.
func writeError(c *fiber.Ctx, err error) error {
	status := domain.StatusOf(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Status: status, Code: domain.CodeOf(err), Message: msg})
}

// parseBody decodifica el cuerpo JSON y aplica las reglas `validate` del DTO.
// Devuelve nil si el cuerpo es válido.
func parseBody(c *fiber.Ctx, v *validator.Validate, out interface{}) *dto.ErrorResponse {
	if err := c.BodyParser(out); err != nil {
		return &dto.ErrorResponse{Status: fiber.StatusBadRequest, Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	if err := v.Struct(out); err != nil {
		return &dto.ErrorResponse{Status: fiber.StatusBadRequest, Code: "VALIDATION", Message: validationMessage(err)}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+": "+fe.Tag())
	}
	return "datos inválidos: " + strings.Join(parts, ", ")
}
