package middleware

import (
	"net/http"

	authentication "github.com/Alwanly/forkauthority-polls/pkg/auth"
	"github.com/Alwanly/forkauthority-polls/pkg/logger"
	"github.com/Alwanly/forkauthority-polls/pkg/wrapper"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const VoterIDContextKey = "voter_id"

// VoterTokenAuth accepts "Authorization: Bearer <uuid>" and stores the voter
// id in the request locals under VoterIDContextKey.
func VoterTokenAuth(log *logger.CanonicalLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Debug("missing authorization header",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(wrapper.ResponseFailed(http.StatusUnauthorized, "missing authorization header", nil))
		}

		voterID, ok := authentication.ParseVoterToken(authHeader)
		if !ok {
			log.Debug("invalid voter token",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(wrapper.ResponseFailed(http.StatusUnauthorized, "invalid voter token", nil))
		}

		c.Locals(VoterIDContextKey, voterID)
		logger.AddToContext(c.UserContext(), zap.String(logger.FieldVoterID, voterID))

		return c.Next()
	}
}
