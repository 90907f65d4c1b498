package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// HeaderIdempotencyKey cabecera que identifica un intento lógico de una mutación.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore contrato mínimo del almacén de claves (Redis en producción).
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Load(ctx context.Context, key string) (*cache.StoredResponse, error)
	Save(ctx context.Context, key string, resp cache.StoredResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Idempotency repite la respuesta guardada cuando llega de nuevo la misma Idempotency-Key.
// Solo se guardan respuestas 2xx; un fallo libera la clave para poder reintentar.
// Sin cabecera la petición pasa sin cambios. Usar después de AuthMiddleware (la clave se
// aísla por usuario).
func Idempotency(store IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderIdempotencyKey)
		if raw == "" {
			return c.Next()
		}
		if len(raw) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: "Idempotency-Key demasiado larga"})
		}
		key := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + raw
		ctx := c.UserContext()

		ok, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			log.Error().Err(err).Str("key", raw).Msg("idempotencia: reservar clave")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar la clave de idempotencia"})
		}
		if !ok {
			prev, err := store.Load(ctx, key)
			if err != nil {
				log.Error().Err(err).Str("key", raw).Msg("idempotencia: leer clave")
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar la clave de idempotencia"})
			}
			if prev == nil || prev.InProgress() {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "una petición con esta clave está en curso"})
			}
			c.Set("Idempotent-Replayed", "true")
			if prev.ContentType != "" {
				c.Set(fiber.HeaderContentType, prev.ContentType)
			}
			return c.Status(prev.Status).Send(prev.Body)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, key)
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			if err := store.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", raw).Msg("idempotencia: liberar clave")
			}
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
		}
		if err := store.Save(ctx, key, resp, ttl); err != nil {
			log.Warn().Err(err).Str("key", raw).Msg("idempotencia: guardar respuesta")
		}
		return nil
	}
}
