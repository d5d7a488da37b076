package controllers

import (
	"strings"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (uc *UserController) GetFilteredUsersController(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	pageSize := c.QueryInt("page_size", 10)
	if pageSize <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid page_size parameter"})
	}

	page := c.QueryInt("page", 1)
	if page <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid page parameter"})
	}

	cleanQueryParam := func(param string) string {
		param = strings.TrimSpace(param)
		if param == "" || strings.ToLower(param) == "null" {
			return ""
		}
		return param
	}

	offset := (page - 1) * pageSize
	filters := make(map[string]string)
	if v := cleanQueryParam(c.Query("active")); v != "" {
		filters["active"] = v
	}
	if v := cleanQueryParam(c.Query("role")); v != "" {
		filters["role"] = v
	}
	if v := cleanQueryParam(c.Query("email")); v != "" {
		filters["email"] = v
	}
	if v := cleanQueryParam(c.Query("name")); v != "" {
		filters["name"] = v
	}

	users, total, err := uc.UserRepo.GetFilteredUsers(payload.TenantID, pageSize, offset, filters)
	if err != nil {
		config.Logger.Error("Failed to fetch paginated users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"current_page": page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  totalPages,
		},
	})
}
