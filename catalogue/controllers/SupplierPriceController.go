package controllers

import (
	"strings"
	"time"

	"dpgf-quoting-backend/db/models"
	mapping_services "dpgf-quoting-backend/mappings/services"
	"dpgf-quoting-backend/middleware"
	quote_services "dpgf-quoting-backend/quotes/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type supplierPriceRequest struct {
	SupplierName string  `json:"supplier_name"`
	PrixBrut     string  `json:"prix_brut"`
	RemisePct    *string `json:"remise_pct"`
	PrixNet      *string `json:"prix_net"`
	ValiditeFin  *string `json:"validite_fin"`
}

// resolvePriceFields parses the request amounts. When prix_net is not
// supplied it is derived from prix_brut and remise_pct.
func resolvePriceFields(req supplierPriceRequest) (prixBrut, remisePct, prixNet decimal.Decimal, validiteFin *time.Time, err error) {
	prixBrut, err = decimal.NewFromString(strings.TrimSpace(req.PrixBrut))
	if err != nil {
		err = fiber.NewError(fiber.StatusBadRequest, "Invalid prix_brut value")
		return
	}

	remisePct = decimal.Zero
	if req.RemisePct != nil && strings.TrimSpace(*req.RemisePct) != "" {
		remisePct, err = decimal.NewFromString(strings.TrimSpace(*req.RemisePct))
		if err != nil {
			err = fiber.NewError(fiber.StatusBadRequest, "Invalid remise_pct value")
			return
		}
	}

	if req.PrixNet != nil && strings.TrimSpace(*req.PrixNet) != "" {
		prixNet, err = decimal.NewFromString(strings.TrimSpace(*req.PrixNet))
		if err != nil {
			err = fiber.NewError(fiber.StatusBadRequest, "Invalid prix_net value")
			return
		}
	} else {
		prixNet = quote_services.CalculatePrixNet(prixBrut, remisePct)
	}

	if req.ValiditeFin != nil && strings.TrimSpace(*req.ValiditeFin) != "" {
		parsed, parseErr := time.Parse("2006-01-02", strings.TrimSpace(*req.ValiditeFin))
		if parseErr != nil {
			err = fiber.NewError(fiber.StatusBadRequest, "Invalid validite_fin date, expected YYYY-MM-DD")
			return
		}
		validiteFin = &parsed
	}
	return
}

func (cc *CatalogueController) CreateSupplierPrice(c *fiber.Ctx) error {
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

	var req supplierPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	supplier := mapping_services.NormalizeSupplierName(req.SupplierName)
	if supplier == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Supplier name is required",
			"data":    nil,
			"error":   "missing supplier_name",
		})
	}

	prixBrut, remisePct, prixNet, validiteFin, err := resolvePriceFields(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid price values",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	price := &models.SupplierPrice{
		TenantID:        payload.TenantID,
		CatalogueItemID: itemID,
		SupplierName:    supplier,
		PrixBrut:        prixBrut,
		RemisePct:       remisePct,
		PrixNet:         prixNet,
		ValiditeFin:     validiteFin,
		CreatedBy:       payload.Email,
	}

	created, err := cc.CatalogueRepo.CreateSupplierPrice(price)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create supplier price",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Supplier price created successfully",
		"data":    created,
		"error":   nil,
	})
}

func (cc *CatalogueController) UpdateSupplierPrice(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	priceID, err := uuid.Parse(c.Params("price_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid supplier price ID",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	existing, err := cc.CatalogueRepo.GetSupplierPriceByID(payload.TenantID, priceID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Supplier price not found",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	var req supplierPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if strings.TrimSpace(req.PrixBrut) == "" {
		req.PrixBrut = existing.PrixBrut.String()
	}
	if req.RemisePct == nil {
		remise := existing.RemisePct.String()
		req.RemisePct = &remise
	}

	prixBrut, remisePct, prixNet, validiteFin, err := resolvePriceFields(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid price values",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if supplier := mapping_services.NormalizeSupplierName(req.SupplierName); supplier != "" {
		existing.SupplierName = supplier
	}
	existing.PrixBrut = prixBrut
	existing.RemisePct = remisePct
	existing.PrixNet = prixNet
	if req.ValiditeFin != nil {
		existing.ValiditeFin = validiteFin
	}

	updated, err := cc.CatalogueRepo.UpdateSupplierPrice(existing)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update supplier price",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Supplier price updated successfully",
		"data":    updated,
		"error":   nil,
	})
}

func (cc *CatalogueController) GetSupplierPrices(c *fiber.Ctx) error {
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

	prices, err := cc.CatalogueRepo.GetSupplierPricesByCatalogueItem(payload.TenantID, itemID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch supplier prices",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Supplier prices retrieved successfully",
		"data":    prices,
		"error":   nil,
	})
}
