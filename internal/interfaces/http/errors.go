package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-manager-api/internal/application/dto"
	"github.com/jhoicas/stock-manager-api/internal/domain"
)

// errorMapping status y código HTTP de cada error de dominio.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: los tipos concretos antes que sus sentinelas.
var errorMappings = []errorMapping{
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND", "usuario no encontrado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "ya existe un registro con ese valor"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "la operación entra en conflicto con el estado actual"},
	{domain.ErrInvalidReference, fiber.StatusBadRequest, "INVALID_REFERENCE", "referencia inexistente"},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser positiva"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT", "datos inválidos"},
	{domain.ErrTokenExpired, fiber.StatusUnauthorized, "TOKEN_EXPIRED", "token expirado"},
	{domain.ErrTokenMalformed, fiber.StatusBadRequest, "INVALID_TOKEN", "token mal formado"},
	{domain.ErrInvalidToken, fiber.StatusBadRequest, "INVALID_TOKEN", "token inválido o expirado"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrAccountDisabled, fiber.StatusBadRequest, "ACCOUNT_DISABLED", "usuario inactivo"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "permisos insuficientes"},
	{domain.ErrTimeout, fiber.StatusServiceUnavailable, "TIMEOUT", "la operación tardó demasiado, reintente"},
	{domain.ErrUnavailable, fiber.StatusServiceUnavailable, "UNAVAILABLE", "servicio no disponible"},
}

// writeError traduce un error de dominio a la respuesta HTTP. Los errores no
// clasificados se registran y se responden como 500 sin exponer el detalle.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK",
			Message: fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d",
				stockErr.Requested, stockErr.Available),
		})
	}
	var inUse *domain.CategoryInUseError
	if errors.As(err, &inUse) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "CATEGORY_IN_USE",
			Message: fmt.Sprintf("la categoría tiene %d productos asociados", inUse.Products),
		})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: message(err, m)})
		}
	}

	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("request_id", requestID(c)).
		Msg("error interno no clasificado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code: "INTERNAL", Message: "error interno del servidor",
	})
}

// message usa el texto del error solo para entradas inválidas, que lo redacta el caso de uso.
func message(err error, m errorMapping) string {
	if m.target == domain.ErrInvalidInput {
		return err.Error()
	}
	return m.message
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func invalidQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de consulta inválidos"})
}
