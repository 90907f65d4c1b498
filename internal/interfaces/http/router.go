package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Coordinator    *appinv.Coordinator
	Query          *appinv.QueryUseCase
	Reconciliation *appinv.ReconciliationEngine
	Replenishment  *appinv.ReplenishmentUseCase
	AuthUC         *auth.AuthUseCase
	ReportPDF      ReportRenderer   // opcional
	Idempotency    IdempotencyStore // opcional (Redis)
	IdempotencyTTL time.Duration
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	privileged := RequireRole(entity.RoleAdmin, entity.RoleManager)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleCashier)

	idem := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Idempotency != nil {
		idem = Idempotency(deps.Idempotency, deps.IdempotencyTTL, deps.Log)
	}

	// Inventario
	invHandler := NewInventoryHandler(deps.Coordinator, deps.Query, deps.Reconciliation, deps.Replenishment, deps.ReportPDF)
	inv := protected.Group("/inventory")
	inv.Get("/", anyRole, invHandler.List)
	inv.Post("/", privileged, idem, invHandler.Open)
	inv.Post("/movements", privileged, idem, invHandler.Movement)
	inv.Get("/reconciliation", privileged, invHandler.Reconciliation)
	inv.Get("/low-stock", anyRole, invHandler.LowStock)
	inv.Get("/report", anyRole, invHandler.Report)
	inv.Get("/:id", anyRole, invHandler.Get)
	inv.Get("/:id/history", anyRole, invHandler.History)
	inv.Patch("/:id/thresholds", privileged, invHandler.UpdateThresholds)
	inv.Post("/:id/adjustments", privileged, idem, invHandler.Adjust)

	// Ventas
	saleHandler := NewSaleHandler(deps.Coordinator, deps.Query)
	sales := protected.Group("/sales", anyRole)
	sales.Post("/", idem, saleHandler.Record)
	sales.Get("/:id", saleHandler.Get)
	sales.Post("/:id/void", idem, saleHandler.Void)

	// Traslados
	transferHandler := NewTransferHandler(deps.Coordinator, deps.Query)
	transfers := protected.Group("/transfers", anyRole)
	transfers.Post("/", privileged, idem, transferHandler.Record)
	transfers.Post("/requests", idem, transferHandler.Request)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/complete", idem, transferHandler.Complete)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
	transfers.Post("/:id/reject", transferHandler.Reject)
}
