package middleware

import (
	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProtectedRoute authenticates requests from the access-token cookie,
// falling back to the Redis-backed refresh token. The verified payload
// lands in c.Locals("user").
func ProtectedRoute(ctx *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")
		refreshToken := c.Cookies("refresh_token")

		if accessToken != "" {
			payload, err := ctx.PasetoMaker.VerifyToken(accessToken)
			if err == nil {
				c.Locals("user", payload)
				return c.Next()
			}
			config.Logger.Debug("Invalid access token encountered", zap.Error(err))
		}

		if refreshToken == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
				"error":   "Authentication required",
			})
		}

		refreshPayload, err := ctx.PasetoMaker.VerifyToken(refreshToken)
		if err != nil {
			config.Logger.Error("Invalid refresh token verification failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
				"error":   "Session expired or invalid. Please log in again.",
			})
		}

		// Refresh tokens are single-source-of-truth in Redis; a token
		// missing there has been revoked or expired server-side.
		_, err = ctx.RedisClient.Get(ctx.Ctx, "refresh_token:"+refreshToken).Result()
		if err == redis.Nil {
			config.Logger.Warn("Refresh token not found in Redis",
				zap.String("email", refreshPayload.Email))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
				"error":   "Session expired or invalid. Please log in again.",
			})
		}
		if err != nil {
			config.Logger.Error("Redis lookup for refresh token failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}

		c.Locals("user", refreshPayload)
		return c.Next()
	}
}

// RequireEditor restricts a route to roles allowed to mutate pricing
// and mapping data (admin or engineer).
func RequireEditor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, ok := c.Locals("user").(*token.Payload)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}
		if !payload.Role.CanEditPricing() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden",
				"error":   "This action requires an admin or engineer role",
			})
		}
		return c.Next()
	}
}

// CurrentUser extracts the verified token payload set by
// ProtectedRoute. The boolean is false on unauthenticated routes.
func CurrentUser(c *fiber.Ctx) (*token.Payload, bool) {
	payload, ok := c.Locals("user").(*token.Payload)
	return payload, ok
}
