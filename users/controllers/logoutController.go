package controllers

import (
	"time"

	"dpgf-quoting-backend/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (lc *LoginController) LogoutUser(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		err := lc.RedisClient.Del(lc.Ctx, "refresh_token:"+refreshToken).Err()
		if err != nil {
			config.Logger.Error("Failed to delete refresh token from Redis during logout",
				zap.Error(err),
			)
		} else {
			config.Logger.Info("Refresh token successfully deleted from Redis during logout")
		}
	} else {
		config.Logger.Debug("No refresh token found in cookies during logout attempt")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		Path:     "/",
		Domain:   "localhost",
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		Path:     "/",
		Domain:   "localhost",
	})

	config.Logger.Info("User logged out successfully",
		zap.String("client_ip", c.IP()),
	)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
		"data":    nil,
		"error":   nil,
	})
}
