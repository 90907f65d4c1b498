package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// SaleHandler ventas y anulaciones (protegido).
type SaleHandler struct {
	coord *appinv.Coordinator
	query *appinv.QueryUseCase
}

func NewSaleHandler(coord *appinv.Coordinator, query *appinv.QueryUseCase) *SaleHandler {
	return &SaleHandler{coord: coord, query: query}
}

// Record godoc
// @Summary      Registrar venta
// @Description  Todas las líneas se aplican o ninguna. store_id vacío = tienda del usuario.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Clave para reintentos seguros"
// @Param        body             body    dto.RecordSaleRequest  true   "items"
// @Success      201  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	actor := actorFrom(c)
	storeID := in.StoreID
	if storeID == "" {
		storeID = actor.StoreID
	}
	if !actor.IsPrivileged() && storeID != actor.StoreID {
		return writeError(c, domain.ErrForbidden)
	}
	items := make([]appinv.SaleItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, appinv.SaleItemInput{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	sale, err := h.coord.RecordSale(c.UserContext(), appinv.RecordSaleInput{
		StoreID: storeID,
		ActorID: actor.ID,
		Items:   items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// Get godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	sale, err := h.query.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Void godoc
// @Summary      Anular venta
// @Description  Devuelve el stock de cada línea. Cajeros: solo su tienda y dentro de la ventana de anulación.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la venta"
// @Param        body  body  dto.VoidSaleRequest  true  "reason"
// @Success      200  {object}  dto.VoidSaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.coord.VoidSale(c.UserContext(), c.Params("id"), actorFrom(c), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toVoidResponse(res))
}
