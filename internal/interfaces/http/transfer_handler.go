package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferHandler traslados entre tiendas (protegido).
type TransferHandler struct {
	coord *appinv.Coordinator
	query *appinv.QueryUseCase
}

func NewTransferHandler(coord *appinv.Coordinator, query *appinv.QueryUseCase) *TransferHandler {
	return &TransferHandler{coord: coord, query: query}
}

func (h *TransferHandler) input(c *fiber.Ctx) (appinv.RecordTransferInput, error) {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return appinv.RecordTransferInput{}, errBadBody
	}
	if err := checkStruct(&in); err != nil {
		return appinv.RecordTransferInput{}, err
	}
	return appinv.RecordTransferInput{
		ProductID:   in.ProductID,
		FromStoreID: in.FromStoreID,
		ToStoreID:   in.ToStoreID,
		Quantity:    in.Quantity,
		ActorID:     GetUserID(c),
		Notes:       in.Notes,
	}, nil
}

// Record godoc
// @Summary      Traslado inmediato entre tiendas
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from_store_id, to_store_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Record(c *fiber.Ctx) error {
	in, err := h.input(c)
	if err != nil {
		return inputError(c, err)
	}
	t, err := h.coord.RecordTransfer(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// Request godoc
// @Summary      Solicitar traslado (queda PENDING)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from_store_id, to_store_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/requests [post]
func (h *TransferHandler) Request(c *fiber.Ctx) error {
	in, err := h.input(c)
	if err != nil {
		return inputError(c, err)
	}
	t, err := h.coord.RequestTransfer(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// Get godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.query.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

type resolveFunc func(ctx context.Context, id string, actor entity.Actor) (*entity.ProductTransfer, error)

func (h *TransferHandler) resolve(fn resolveFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := fn(c.UserContext(), c.Params("id"), actorFrom(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toTransferResponse(t))
	}
}

// Complete godoc
// @Summary      Completar traslado pendiente (mueve el stock)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	return h.resolve(h.coord.CompleteTransfer)(c)
}

// Cancel godoc
// @Summary      Cancelar traslado pendiente
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.resolve(h.coord.CancelTransfer)(c)
}

// Reject godoc
// @Summary      Rechazar traslado pendiente
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	return h.resolve(h.coord.RejectTransfer)(c)
}
