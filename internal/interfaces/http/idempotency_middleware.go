package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	infraredis "github.com/jhoicas/stock-ledger-api/internal/infrastructure/redis"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// HeaderIdempotencyKey header opcional en escrituras para reintentos seguros.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore lo implementa *redis.IdempotencyStore.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (*infraredis.Record, error)
	Complete(ctx context.Context, key string, status int, contentType string, body []byte) error
	Release(ctx context.Context, key string) error
}

// Idempotency repite la respuesta guardada cuando llega de nuevo la misma Idempotency-Key.
// Solo se guardan respuestas 2xx; cualquier otro resultado libera la llave.
// Debe ir después de AuthMiddleware: la llave se separa por usuario.
func Idempotency(store IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if store == nil || key == "" || c.Method() == fiber.MethodGet {
			return c.Next()
		}
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		rec, err := store.Begin(ctx, scoped)
		if errors.Is(err, infraredis.ErrInProgress) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "petición en curso con la misma Idempotency-Key"})
		}
		if err != nil {
			// sin Redis la petición sigue sin garantía de idempotencia
			log.Warn().Err(err).Msg("idempotency: store no disponible")
			return c.Next()
		}
		if rec != nil {
			c.Set("Idempotent-Replayed", "true")
			if rec.ContentType != "" {
				c.Set(fiber.HeaderContentType, rec.ContentType)
			}
			return c.Status(rec.Status).Send(rec.Body)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, scoped)
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn().Err(err).Msg("idempotency: liberar llave")
			}
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		if err := store.Complete(ctx, scoped, status, string(c.Response().Header.ContentType()), body); err != nil {
			log.Warn().Err(err).Msg("idempotency: guardar respuesta")
		}
		return nil
	}
}
