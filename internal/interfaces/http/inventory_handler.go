package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportRenderer genera el PDF del reporte de movimientos.
type ReportRenderer interface {
	Generate(ctx context.Context, rep *dto.MovementReport) ([]byte, error)
}

// InventoryHandler maneja registros de inventario, ajustes, ledger y reportes (protegido).
type InventoryHandler struct {
	coord         *appinv.Coordinator
	query         *appinv.QueryUseCase
	recon         *appinv.ReconciliationEngine
	replenishment *appinv.ReplenishmentUseCase
	pdf           ReportRenderer
}

// NewInventoryHandler construye el handler. pdf puede ser nil (solo JSON).
func NewInventoryHandler(
	coord *appinv.Coordinator,
	query *appinv.QueryUseCase,
	recon *appinv.ReconciliationEngine,
	replenishment *appinv.ReplenishmentUseCase,
	pdf ReportRenderer,
) *InventoryHandler {
	return &InventoryHandler{coord: coord, query: query, recon: recon, replenishment: replenishment, pdf: pdf}
}

// Open godoc
// @Summary      Dar de alta un producto en una tienda
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenInventoryRequest  true  "product_id, store_id, initial_quantity"
// @Success      201   {object}  dto.MutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenInventoryRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.coord.OpenInventory(c.UserContext(), appinv.OpenInventoryInput{
		ProductID:       in.ProductID,
		StoreID:         in.StoreID,
		InitialQuantity: in.InitialQuantity,
		ReorderLevel:    in.ReorderLevel,
		OptimalLevel:    in.OptimalLevel,
		PriceOverride:   in.PriceOverride,
		ActorID:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMutationResponse(res))
}

// Get godoc
// @Summary      Obtener registro de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del registro"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	rec, err := h.query.GetRecord(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// List godoc
// @Summary      Listar registros de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        store_id       query  string  false  "Filtrar por tienda"
// @Param        product_id     query  string  false  "Filtrar por producto"
// @Param        below_reorder  query  bool    false  "Solo registros en o bajo el punto de reorden"
// @Param        limit          query  int     false  "Límite (default 20, máximo 100)"
// @Param        offset         query  int     false  "Offset"
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, fmt.Errorf("%w: paginación inválida", domain.ErrInvalidInput))
	}
	page.DefaultPage()
	if err := checkStruct(&page); err != nil {
		return writeError(c, err)
	}
	recs, total, err := h.query.ListRecords(c.UserContext(), repository.InventoryFilter{
		StoreID:      c.Query("store_id"),
		ProductID:    c.Query("product_id"),
		BelowReorder: c.QueryBool("below_reorder", false),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.InventoryRecordResponse, 0, len(recs))
	for _, r := range recs {
		items = append(items, toRecordResponse(r))
	}
	return c.JSON(dto.InventoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// UpdateThresholds godoc
// @Summary      Cambiar umbrales y precio de tienda
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del registro"
// @Param        body  body  dto.ThresholdsRequest   true  "reorder_level, optimal_level, price_override"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/thresholds [patch]
func (h *InventoryHandler) UpdateThresholds(c *fiber.Ctx) error {
	var in dto.ThresholdsRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	rec, err := h.coord.UpdateThresholds(c.UserContext(), c.Params("id"), appinv.ThresholdsInput{
		ReorderLevel:       in.ReorderLevel,
		OptimalLevel:       in.OptimalLevel,
		PriceOverride:      in.PriceOverride,
		ClearPriceOverride: in.ClearPriceOverride,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del registro"
// @Param        body  body  dto.AdjustmentRequest  true  "delta, change_type (PURCHASE, RETURN, DAMAGE, ADJUSTMENT)"
// @Success      201   {object}  dto.MutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.ChangeType = strings.ToUpper(strings.TrimSpace(in.ChangeType))
	if err := checkStruct(&in); err != nil {
		return writeError(c, err)
	}
	res, err := h.coord.AdjustInventory(c.UserContext(), appinv.AdjustInput{
		InventoryID: c.Params("id"),
		Delta:       in.Delta,
		ChangeType:  entity.ChangeType(in.ChangeType),
		ActorID:     GetUserID(c),
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMutationResponse(res))
}

// Movement godoc
// @Summary      Mutación genérica de stock por producto y tienda
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "product_id, store_id, delta, change_type"
// @Success      201   {object}  dto.MutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) Movement(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.coord.MutateStock(c.UserContext(), appinv.MutateStockInput{
		ProductID:     in.ProductID,
		StoreID:       in.StoreID,
		Delta:         in.Delta,
		ChangeType:    entity.ChangeType(strings.ToUpper(in.ChangeType)),
		ActorID:       GetUserID(c),
		ReferenceID:   in.ReferenceID,
		ReferenceType: in.ReferenceType,
		Notes:         in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMutationResponse(res))
}

// History godoc
// @Summary      Historia (ledger) de un registro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {array}   dto.HistoryEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	entries, err := h.query.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toHistoryResponses(entries))
}

// Reconciliation godoc
// @Summary      Validar integridad del ledger
// @Description  Reproduce la historia de cada registro y la compara con la cantidad actual. No corrige.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        inventory_id  query  string  false  "Un solo registro; vacío = todos"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconciliation [get]
func (h *InventoryHandler) Reconciliation(c *fiber.Ctx) error {
	results, err := h.recon.ValidateIntegrity(c.UserContext(), c.Query("inventory_id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ReconciliationResponse{Checked: len(results), Results: results}
	for _, r := range results {
		if !r.IsValid {
			out.Invalid++
		}
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Sugerencias de reposición
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Filtrar por tienda"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.replenishment.LowStock(c.UserContext(), c.Query("store_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// Report godoc
// @Summary      Reporte de movimientos de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Produce      application/pdf
// @Param        store_id    query  string  false  "Tiendas separadas por coma"
// @Param        product_id  query  string  false  "Productos separados por coma"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD, inclusivo)"
// @Param        to          query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, exclusivo)"
// @Param        format      query  string  false  "json (default) o pdf"
// @Success      200  {object}  dto.MovementReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/report [get]
func (h *InventoryHandler) Report(c *fiber.Ctx) error {
	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	rep, err := h.query.MovementReport(c.UserContext(), appinv.ReportFilter{
		StoreIDs:   splitList(c.Query("store_id")),
		ProductIDs: splitList(c.Query("product_id")),
		From:       from,
		To:         to,
	})
	if err != nil {
		return writeError(c, err)
	}
	if c.Query("format") != "pdf" {
		return c.JSON(rep)
	}
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_DISABLED", Message: "generación de PDF no configurada"})
	}
	doc, err := h.pdf.Generate(c.UserContext(), rep)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="movimientos.pdf"`)
	return c.Send(doc)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTimeParam acepta RFC3339 o fecha YYYY-MM-DD (UTC). Vacío = sin límite.
func parseTimeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, s)
}
