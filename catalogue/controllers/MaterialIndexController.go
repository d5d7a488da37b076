package controllers

import (
	"strings"
	"time"

	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type materialIndexRequest struct {
	Matiere     string `json:"matiere"`
	Date        string `json:"date"`
	Coefficient string `json:"coefficient"`
}

func (cc *CatalogueController) CreateMaterialIndex(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	var req materialIndexRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	matiere := strings.ToLower(strings.TrimSpace(req.Matiere))
	if matiere == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Material name is required",
			"data":    nil,
			"error":   "missing matiere",
		})
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid date, expected YYYY-MM-DD",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	coefficient, err := decimal.NewFromString(strings.TrimSpace(req.Coefficient))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid coefficient value",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	if coefficient.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Coefficient must be positive",
			"data":    nil,
			"error":   "coefficient must be greater than zero",
		})
	}

	index := &models.MaterialIndex{
		TenantID:    payload.TenantID,
		Matiere:     matiere,
		Date:        date,
		Coefficient: coefficient,
		CreatedBy:   payload.Email,
	}

	created, err := cc.CatalogueRepo.CreateMaterialIndex(index)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create material index",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Material index created successfully",
		"data":    created,
		"error":   nil,
	})
}

// GetMaterialIndices lists the index history for a material, newest
// first, plus the one pricing would use.
func (cc *CatalogueController) GetMaterialIndices(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	matiere := strings.ToLower(strings.TrimSpace(c.Params("matiere")))
	if matiere == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Material name is required",
			"data":    nil,
			"error":   "missing matiere",
		})
	}

	indices, err := cc.CatalogueRepo.GetMaterialIndicesByMatiere(payload.TenantID, matiere)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch material indices",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	var last *models.MaterialIndex
	if len(indices) > 0 {
		last = &indices[0]
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Material indices retrieved successfully",
		"data": fiber.Map{
			"indices": indices,
			"last":    last,
		},
		"error": nil,
	})
}
