package controllers

import (
	"context"
	"strings"

	bleveRepositories "dpgf-quoting-backend/bleve/repositories"
	"dpgf-quoting-backend/catalogue/repositories"
	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CatalogueController struct {
	CatalogueRepo repositories.CatalogueRepository
	BleveRepo     bleveRepositories.BleveRepositoryInterface
	DB            *gorm.DB
	Ctx           context.Context
}

type catalogueItemRequest struct {
	HexCode        string  `json:"hex_code"`
	Designation    string  `json:"designation"`
	Matiere        *string `json:"matiere"`
	Unite          *string `json:"unite"`
	TempsUnitaireH *string `json:"temps_unitaire_h"`
}

func parseOptionalDecimal(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid decimal value for "+field)
	}
	return &d, nil
}

func (cc *CatalogueController) CreateCatalogueItem(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	var req catalogueItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if strings.TrimSpace(req.HexCode) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Hex code is required",
			"data":    nil,
			"error":   "missing hex_code",
		})
	}
	if strings.TrimSpace(req.Designation) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Designation is required",
			"data":    nil,
			"error":   "missing designation",
		})
	}

	tempsUnitaire, err := parseOptionalDecimal(req.TempsUnitaireH, "temps_unitaire_h")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid labor time",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	item := &models.CatalogueItem{
		TenantID:       payload.TenantID,
		HexCode:        req.HexCode,
		Designation:    strings.TrimSpace(req.Designation),
		Matiere:        req.Matiere,
		Unite:          req.Unite,
		TempsUnitaireH: tempsUnitaire,
		CreatedBy:      payload.Email,
	}

	var created *models.CatalogueItem
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = cc.CatalogueRepo.CreateCatalogueItem(tx, item)
		return txErr
	})
	if err != nil {
		status := fiber.StatusInternalServerError
		if strings.Contains(err.Error(), "already exists") {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{
			"message": "Failed to create catalogue item",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if cc.BleveRepo != nil {
		if err := cc.BleveRepo.IndexSingleCatalogueItem(*created); err != nil {
			config.Logger.Warn("Failed to index catalogue item",
				zap.String("item_id", created.ID.String()),
				zap.Error(err),
			)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Catalogue item created successfully",
		"data":    created,
		"error":   nil,
	})
}

func (cc *CatalogueController) UpdateCatalogueItem(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid catalogue item ID",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	existing, err := cc.CatalogueRepo.GetCatalogueItemByID(payload.TenantID, itemID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Catalogue item not found",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	var req catalogueItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if strings.TrimSpace(req.HexCode) != "" {
		existing.HexCode = req.HexCode
	}
	if strings.TrimSpace(req.Designation) != "" {
		existing.Designation = strings.TrimSpace(req.Designation)
	}
	if req.Matiere != nil {
		existing.Matiere = req.Matiere
	}
	if req.Unite != nil {
		existing.Unite = req.Unite
	}
	if req.TempsUnitaireH != nil {
		tempsUnitaire, err := parseOptionalDecimal(req.TempsUnitaireH, "temps_unitaire_h")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid labor time",
				"data":    nil,
				"error":   err.Error(),
			})
		}
		existing.TempsUnitaireH = tempsUnitaire
	}
	existing.UpdatedBy = &payload.Email

	updated, err := cc.CatalogueRepo.UpdateCatalogueItem(existing)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update catalogue item",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if cc.BleveRepo != nil {
		if err := cc.BleveRepo.UpdateCatalogueItem(*updated); err != nil {
			config.Logger.Warn("Failed to reindex catalogue item",
				zap.String("item_id", updated.ID.String()),
				zap.Error(err),
			)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Catalogue item updated successfully",
		"data":    updated,
		"error":   nil,
	})
}

func (cc *CatalogueController) DeleteCatalogueItem(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid catalogue item ID",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if _, err := cc.CatalogueRepo.GetCatalogueItemByID(payload.TenantID, itemID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Catalogue item not found",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if err := cc.CatalogueRepo.DeleteCatalogueItem(payload.TenantID, itemID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete catalogue item",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if cc.BleveRepo != nil {
		if err := cc.BleveRepo.DeleteCatalogueItem(payload.TenantID, itemID.String()); err != nil {
			config.Logger.Warn("Failed to remove catalogue item from index",
				zap.String("item_id", itemID.String()),
				zap.Error(err),
			)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Catalogue item deleted successfully",
		"data":    nil,
		"error":   nil,
	})
}

func (cc *CatalogueController) GetSingleCatalogueItem(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid catalogue item ID",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	item, err := cc.CatalogueRepo.GetCatalogueItemByID(payload.TenantID, itemID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Catalogue item not found",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	prices, err := cc.CatalogueRepo.GetSupplierPricesByCatalogueItem(payload.TenantID, itemID)
	if err != nil {
		config.Logger.Warn("Failed to load supplier prices for catalogue item",
			zap.String("item_id", itemID.String()),
			zap.Error(err),
		)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Catalogue item retrieved successfully",
		"data": fiber.Map{
			"item":            item,
			"supplier_prices": prices,
		},
		"error": nil,
	})
}
