package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/granja-ventas/internal/application/dto"
	"github.com/tu-usuario/granja-ventas/internal/domain"
)

// writeError traduce la taxonomía de errores de dominio a respuestas HTTP.
// Un timeout sale como 504 con mensaje explícito de resultado desconocido: el
// cliente debe re-consultar antes de reintentar, no asumir rollback.
func writeError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION_FAILED", Message: "validación fallida", Details: verr.Details,
		})
	}
	var serr *domain.StockError
	if errors.As(err, &serr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: serr.Error(),
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_FAILED", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_EXISTS", Message: err.Error()})
	case errors.Is(err, domain.ErrNotConfirmed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_CONFIRMED", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintentar"})
	case errors.Is(err, domain.ErrTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
			Code: "TIMEOUT", Message: "tiempo agotado; resultado desconocido, consulte la venta antes de reintentar",
		})
	case errors.Is(err, domain.ErrCancelUnsupported):
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
