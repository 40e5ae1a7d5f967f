package middleware

import (
	"strings"

	"glinax/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware requires a valid bearer token and stores the subject in
// the request context as "userID".
func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			logger.Warn("Missing authorization token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization",
			})
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals("userID", claims.UserID)
		return c.Next()
	}
}

// OptionalAuthMiddleware resolves "userID" from a bearer token when one is
// present, and lets the request through either way. The answer endpoints
// accept anonymous traffic but prefer the token subject over any user id in
// the request body.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if claims, err := jwtManager.ValidateToken(token); err == nil {
				c.Locals("userID", claims.UserID)
			} else {
				logger.Debug("Ignoring invalid bearer token", zap.Error(err))
			}
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	token := c.Get("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		token = token[7:]
	}
	return token
}
