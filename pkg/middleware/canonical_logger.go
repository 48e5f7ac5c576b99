package middleware

import (
	"time"

	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CanonicalLoggerMiddleware logs one line per request with the fields that
// handlers and usecases accumulated in the request's LogContext.
func CanonicalLoggerMiddleware(log *logger.CanonicalLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logCtx := logger.NewLogContext()
		c.Locals("log_context", logCtx)
		userCtx := logger.WithLogContext(c.UserContext(), logCtx)

		// the request id doubles as the correlation id of document change
		// notifications caused by this request
		if reqID, ok := c.Locals("requestid").(string); ok && reqID != "" {
			logCtx.AddField(zap.String(logger.FieldRequestID, reqID))
			userCtx = logger.WithCorrelationID(userCtx, reqID)
		}
		c.SetUserContext(userCtx)

		start := time.Now()

		defer func() {
			duration := time.Since(start)
			status := c.Response().StatusCode()

			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			}
			if id := c.Params("id"); id != "" {
				fields = append(fields, zap.String(logger.FieldPollID, id))
			}
			fields = append(fields, logCtx.Fields()...)

			switch {
			case status >= 500:
				log.Error("http_request", fields...)
			case status >= 400:
				log.Info("http_request_client_error", fields...)
			default:
				log.Debug("http_request", fields...)
			}
		}()

		return c.Next()
	}
}
