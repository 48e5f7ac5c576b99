package deps

import (
	"context"

	"github.com/Alwanly/forkauthority-polls/internal/metrics"
	"github.com/Alwanly/forkauthority-polls/pkg/docstore"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

type App struct {
	// Context ends when the server begins shutting down. Long-lived responses
	// such as event streams are bound to it.
	Context    context.Context
	Fiber      *fiber.App
	Logger     *logger.CanonicalLogger
	Store      docstore.Store
	Metrics    *metrics.Metrics
	Middleware *middleware.AuthMiddleware
}
