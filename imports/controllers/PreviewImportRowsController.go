package controllers

import (
	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PreviewImportRows pages through the raw parsed rows of an import so
// the mapping screen can show sample data per column.
func (ic *ImportController) PreviewImportRows(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	importID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid import ID"})
	}

	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, err := ic.ImportRepo.GetImportByID(payload.TenantID, importID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Import not found"})
	}

	total, err := ic.ImportRepo.CountRawRows(payload.TenantID, importID)
	if err != nil {
		config.Logger.Error("Failed to count raw rows", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch rows"})
	}

	offset := (params.Page - 1) * params.PageSize
	rows, err := ic.ImportRepo.GetRawRows(payload.TenantID, importID, params.PageSize, offset)
	if err != nil {
		config.Logger.Error("Failed to fetch raw rows",
			zap.String("import_id", importID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch rows"})
	}

	return c.Status(fiber.StatusOK).JSON(pagination.NewPaginatedResponse(c, rows, total, params))
}
