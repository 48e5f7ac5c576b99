package middleware

import (
	"errors"

	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(log *logger.CanonicalLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code >= fiber.StatusInternalServerError {
			log.HTTPError(c.Method(), c.Path(), code, err)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
