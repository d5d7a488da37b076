package controllers

import (
	"strings"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (ic *ImportController) GetFilteredImportsController(c *fiber.Ctx) error {
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
	if v := cleanQueryParam(c.Query("status")); v != "" {
		filters["status"] = v
	}
	if v := cleanQueryParam(c.Query("supplier")); v != "" {
		filters["supplier"] = v
	}
	if v := cleanQueryParam(c.Query("filename")); v != "" {
		filters["filename"] = v
	}
	if v := cleanQueryParam(c.Query("start_date")); v != "" {
		filters["start_date"] = v
	}
	if v := cleanQueryParam(c.Query("end_date")); v != "" {
		filters["end_date"] = v
	}

	imports, total, err := ic.ImportRepo.GetFilteredImports(payload.TenantID, pageSize, offset, filters)
	if err != nil {
		config.Logger.Error("Failed to fetch paginated imports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch imports"})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": imports,
		"meta": fiber.Map{
			"current_page": page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  totalPages,
		},
	})
}
