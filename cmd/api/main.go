package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// runner reúne las tres formas de ejecutar unidades de trabajo que ofrecen ambos drivers.
type runner interface {
	appinv.TxRunner
	appinv.SnapshotRunner
	auth.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store runner
	switch cfg.App.Storage {
	case config.StorageMemory:
		store = seedMemory(cfg.Seed, log)
	default:
		db := postgres.New(cfg.DB)
		if err := db.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer db.Close()
		store = postgres.NewTxRunner(db.Pool())
	}

	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	coordinator := appinv.NewCoordinator(store,
		appinv.WithLogger(log.Component("coordinator")),
		appinv.WithMetrics(ledgerMetrics),
		appinv.WithPolicy(appinv.Policy{
			VoidWindow:    cfg.Ledger.VoidWindow(),
			VoidReasonMin: cfg.Ledger.VoidReasonMin,
		}),
	)
	queryUC := appinv.NewQueryUseCase(store)
	reconciliation := appinv.NewReconciliationEngine(store, cfg.Ledger.ReconcileWorkers, log.Component("reconciliation"), ledgerMetrics)
	replenishmentUC := appinv.NewReplenishmentUseCase(store)
	authUC := auth.NewAuthUseCase(store, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
		RefreshTTL: cfg.JWT.RefreshTTL(),
	}, log.Component("auth"))

	// Idempotency-Key solo si hay Redis; sin Redis las rutas mutantes no deduplican.
	var idempotency httpRouter.IdempotencyStore
	if cfg.Redis.Enabled() {
		idem, client, err := cache.NewIdempotencyStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer func(c *redis.Client) { _ = c.Close() }(client)
		idempotency = idem
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia sobre Redis habilitada")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Coordinator:    coordinator,
		Query:          queryUC,
		Reconciliation: reconciliation,
		Replenishment:  replenishmentUC,
		AuthUC:         authUC,
		ReportPDF:      infrapdf.NewMovementReportGenerator(cfg.App.Name),
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL(),
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedMemory crea el almacén en memoria con una tienda y, si hay credenciales, un administrador.
// El catálogo de productos queda vacío hasta que se siembre por código o se use PostgreSQL.
func seedMemory(seed config.SeedConfig, log *logger.Logger) *memory.Store {
	st := memory.NewStore()
	now := time.Now().UTC()
	storeID := uuid.New().String()
	st.PutStore(entity.Store{ID: storeID, Name: seed.StoreName, Active: true, CreatedAt: now, UpdatedAt: now})

	if !seed.Enabled() {
		log.Warn().Msg("almacén en memoria sin administrador: defina SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD")
		return st
	}
	admin, err := auth.NewAdmin(seed.AdminEmail, seed.AdminPassword, now)
	if err != nil {
		log.Fatal().Err(err).Msg("sembrar administrador")
	}
	st.PutUser(*admin)
	log.Info().Str("store_id", storeID).Str("email", admin.Email).Msg("almacén en memoria sembrado")
	return st
}
