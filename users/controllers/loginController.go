package controllers

import (
	"context"
	"time"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/token"
	"dpgf-quoting-backend/users/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	accessTokenDuration  = 15 * time.Minute
	refreshTokenDuration = 7 * 24 * time.Hour
)

type LoginController struct {
	UserRepo    repositories.UserRepository
	PasetoMaker token.Maker
	Ctx         context.Context
	RedisClient *redis.Client
}

func (lc *LoginController) LoginUser(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing login request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	user, err := lc.UserRepo.GetUserByEmail(req.Email)
	if err != nil || !repositories.CheckPasswordHash(req.Password, user.Password) {
		if err != nil {
			config.Logger.Warn("Login attempt: User not found or database error",
				zap.String("email", req.Email),
				zap.Error(err),
			)
		} else {
			config.Logger.Warn("Login attempt: Invalid password",
				zap.String("email", req.Email),
			)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"data":    nil,
			"error":   "Invalid email or password.",
		})
	}

	if !user.Active {
		config.Logger.Warn("Login attempt for deactivated account",
			zap.String("email", req.Email),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Account disabled",
			"data":    nil,
			"error":   "This account has been deactivated.",
		})
	}

	accessToken, err := lc.PasetoMaker.CreateToken(user.ID, user.TenantID, user.Email, user.Role, accessTokenDuration)
	if err != nil {
		config.Logger.Error("Error generating access token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred during token generation.",
		})
	}

	refreshToken, err := lc.PasetoMaker.CreateToken(user.ID, user.TenantID, user.Email, user.Role, refreshTokenDuration)
	if err != nil {
		config.Logger.Error("Error generating refresh token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred during token generation.",
		})
	}

	err = lc.RedisClient.Set(lc.Ctx, "refresh_token:"+refreshToken, user.ID.String(), refreshTokenDuration).Err()
	if err != nil {
		config.Logger.Error("Error storing refresh token in Redis",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred during session management.",
		})
	}

	if err := lc.UserRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		config.Logger.Warn("Failed to record last login time",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	userWithoutPassword := models.User{
		ID:        user.ID,
		TenantID:  user.TenantID,
		Active:    user.Active,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		CreatedBy: user.CreatedBy,
	}

	accessCookie := fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(accessTokenDuration),
		HTTPOnly: true,
		Secure:   false,
		SameSite: "None",
		Path:     "/",
		Domain:   "localhost",
	}

	refreshCookie := fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(refreshTokenDuration),
		HTTPOnly: true,
		Secure:   false,
		SameSite: "None",
		Path:     "/",
		Domain:   "localhost",
	}

	c.Cookie(&accessCookie)
	c.Cookie(&refreshCookie)

	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
		"data": fiber.Map{
			"user": userWithoutPassword,
		},
		"error": nil,
	})
}
