package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/farmabit/magistral-api/internal/application/dto"
	"github.com/farmabit/magistral-api/internal/domain"
)

// writeError mapea los errores de dominio a respuestas HTTP con código estable.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "el estado actual no permite la operación"})
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_QUANTITY", Message: "cantidad insuficiente"})
	case errors.Is(err, domain.ErrDuplicateBatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_BATCH", Message: "ya existe un lote con ese número para la materia prima"})
	case errors.Is(err, domain.ErrHasUsageHistory):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "HAS_USAGE_HISTORY", Message: "el lote tiene movimientos registrados"})
	case errors.Is(err, domain.ErrOrderFinalized):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ORDER_FINALIZED", Message: "la orden está en un estado final"})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente", Retryable: true})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
