package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// statusFor traduce el tipo de error de dominio a código HTTP.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindAuthorization:
		switch domain.CodeOf(err) {
		case domain.ErrUnauthorized.Code, domain.ErrInvalidToken.Code:
			return fiber.StatusUnauthorized
		}
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// writeError responde con dto.ErrorResponse. Los errores internos no exponen el detalle.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError && domain.KindOf(err) == domain.KindInternal {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: domain.CodeOf(err), Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
