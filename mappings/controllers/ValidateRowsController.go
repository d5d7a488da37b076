package controllers

import (
	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/mappings/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Display caps: the engine reports everything, the response shows the
// first slice.
const (
	maxReportedIssues          = 100
	maxReportedDuplicateGroups = 50
)

// ValidateRows runs caller-supplied validation rules over the import's
// sampled rows and returns the first hundred issues.
func (mc *MappingController) ValidateRows(c *fiber.Ctx) error {
	imp, _, errResp := mc.loadImportScoped(c)
	if imp == nil {
		return errResp
	}

	type ValidateRequest struct {
		Rules []services.ValidationRule `json:"rules"`
	}

	var req ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	if len(req.Rules) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No rules supplied",
			"data":    nil,
			"error":   "At least one validation rule is required.",
		})
	}

	rows, err := mc.sampleRows(imp.TenantID, imp.ID)
	if err != nil {
		config.Logger.Error("Failed to load rows for validation",
			zap.String("import_id", imp.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to load import rows",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	issues := services.ApplyValidationRules(rows, req.Rules)

	truncated := false
	if len(issues) > maxReportedIssues {
		issues = issues[:maxReportedIssues]
		truncated = true
	}

	return c.JSON(fiber.Map{
		"message": "Validation completed",
		"data": fiber.Map{
			"issues":       issues,
			"issue_count":  len(issues),
			"truncated":    truncated,
			"rows_scanned": len(rows),
		},
		"error": nil,
	})
}

// DetectDuplicates groups the import's sampled rows by a composite key
// and returns the first fifty duplicate groups.
func (mc *MappingController) DetectDuplicates(c *fiber.Ctx) error {
	imp, _, errResp := mc.loadImportScoped(c)
	if imp == nil {
		return errResp
	}

	type DuplicatesRequest struct {
		Keys []string `json:"keys"`
	}

	var req DuplicatesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	if len(req.Keys) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No keys supplied",
			"data":    nil,
			"error":   "At least one key column is required.",
		})
	}

	rows, err := mc.sampleRows(imp.TenantID, imp.ID)
	if err != nil {
		config.Logger.Error("Failed to load rows for duplicate scan",
			zap.String("import_id", imp.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to load import rows",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	groups := services.DetectDuplicateGroups(rows, req.Keys)

	truncated := false
	if len(groups) > maxReportedDuplicateGroups {
		groups = groups[:maxReportedDuplicateGroups]
		truncated = true
	}

	return c.JSON(fiber.Map{
		"message": "Duplicate scan completed",
		"data": fiber.Map{
			"groups":       groups,
			"group_count":  len(groups),
			"truncated":    truncated,
			"rows_scanned": len(rows),
		},
		"error": nil,
	})
}
