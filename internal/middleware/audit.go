package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit logs one structured line per request once the handler chain
// finishes. Money movement endpoints get traced by request id so a ledger
// entry can be matched back to the request that produced it.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if id, ok := c.Locals("request_id").(string); ok && id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if userID, ok := c.Locals(UserIDLocalKey).(string); ok && userID != "" {
			attrs = append(attrs, slog.String("user_id", userID))
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request", attrs...)
		} else {
			logger.Info("request", attrs...)
		}
		return err
	}
}
