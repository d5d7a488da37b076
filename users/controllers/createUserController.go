package controllers

import (
	"context"
	"strings"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/users/repositories"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserController struct {
	UserRepo repositories.UserRepository
	DB       *gorm.DB
	Ctx      context.Context
}

func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required.",
		})
	}

	type CreateUserRequest struct {
		FirstName string      `json:"first_name"`
		LastName  string      `json:"last_name"`
		Email     string      `json:"email"`
		Password  string      `json:"password"`
		Role      models.Role `json:"role"`
	}

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error: first name, last name and email are required",
			"data":    nil,
			"error":   "missing_required_fields",
		})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error: password must be at least 8 characters",
			"data":    nil,
			"error":   "weak_password",
		})
	}

	switch req.Role {
	case models.AdminRole, models.EngineerRole, models.ViewerRole:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error: unknown role",
			"data":    nil,
			"error":   "invalid_role",
		})
	}

	// Only admins may mint other admins.
	if req.Role == models.AdminRole && payload.Role != models.AdminRole {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
			"data":    nil,
			"error":   "Only an admin can create admin accounts.",
		})
	}

	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		config.Logger.Error("Failed to hash password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong while creating the user",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	user := models.User{
		TenantID:  payload.TenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      req.Role,
		Active:    true,
		CreatedBy: payload.Email,
	}

	createdUser, err := uc.UserRepo.CreateUser(&user)
	if err != nil {
		config.Logger.Error("Failed to create user in database", zap.Error(err), zap.String("email", user.Email))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong while creating user in the database",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    createdUser,
		"error":   nil,
	})
}

func (uc *UserController) RetrieveSingleUserController(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required.",
		})
	}

	user, err := uc.UserRepo.GetUserByID(c.Params("id"))
	if err != nil || user.TenantID != payload.TenantID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
			"data":    nil,
			"error":   "User does not exist.",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User retrieved successfully",
		"data":    user,
		"error":   nil,
	})
}
