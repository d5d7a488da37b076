package controllers

import (
	"encoding/json"
	"strings"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/mappings/services"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetTemplates lists a supplier's saved mapping templates, newest
// version first.
func (mc *MappingController) GetTemplates(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required.",
		})
	}

	supplier := services.NormalizeSupplierName(c.Query("supplier"))
	templates, err := mc.MappingRepo.GetTemplates(payload.TenantID, supplier)
	if err != nil {
		config.Logger.Error("Failed to fetch mapping templates",
			zap.String("supplier", supplier),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch templates",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Templates retrieved successfully",
		"data": fiber.Map{
			"supplier":  supplier,
			"templates": templates,
		},
		"error": nil,
	})
}

// SaveTemplate stores a named mapping set for reuse across imports of
// the same supplier.
func (mc *MappingController) SaveTemplate(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required.",
		})
	}

	type SaveTemplateRequest struct {
		Supplier    string             `json:"supplier"`
		Description *string            `json:"description"`
		Mappings    []saveMappingEntry `json:"mappings"`
	}

	var req SaveTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	if len(req.Mappings) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No mappings supplied",
			"data":    nil,
			"error":   "A template needs at least one mapping.",
		})
	}
	for _, entry := range req.Mappings {
		if strings.TrimSpace(entry.SourceColumn) == "" || strings.TrimSpace(entry.TargetField) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid mapping entry",
				"data":    nil,
				"error":   "Every mapping needs a source_column and a target_field.",
			})
		}
	}

	doc, err := json.Marshal(req.Mappings)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to encode template",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	supplier := services.NormalizeSupplierName(req.Supplier)

	// New saves become the next version of the supplier's template.
	existing, err := mc.MappingRepo.GetTemplates(payload.TenantID, supplier)
	if err != nil {
		config.Logger.Error("Failed to check existing templates",
			zap.String("supplier", supplier),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save template",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	version := 1
	if len(existing) > 0 {
		version = existing[0].Version + 1
	}

	template := models.MappingTemplate{
		TenantID:     payload.TenantID,
		SupplierName: supplier,
		Mappings:     doc,
		Version:      version,
		Description:  req.Description,
		CreatedBy:    payload.Email,
	}

	saved, err := mc.MappingRepo.SaveTemplate(&template)
	if err != nil {
		config.Logger.Error("Failed to save mapping template",
			zap.String("supplier", supplier),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save template",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Template saved successfully",
		"data":    saved,
		"error":   nil,
	})
}
