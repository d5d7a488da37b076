package controllers

import (
	"strings"

	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type pricingParamsRequest struct {
	TauxHoraireEur string  `json:"taux_horaire_eur"`
	MargePct       string  `json:"marge_pct"`
	BaseCost       *string `json:"base_cost"`
}

func (qc *QuoteController) GetPricingParams(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	params, err := qc.QuoteRepo.GetPricingParams(payload.TenantID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No pricing parameters configured for this tenant",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Pricing parameters retrieved successfully",
		"data":    params,
		"error":   nil,
	})
}

func (qc *QuoteController) UpsertPricingParams(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	var req pricingParamsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	tauxHoraire, err := decimal.NewFromString(strings.TrimSpace(req.TauxHoraireEur))
	if err != nil || tauxHoraire.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Hourly rate must be a positive number",
			"data":    nil,
			"error":   "invalid taux_horaire_eur",
		})
	}

	margePct, err := decimal.NewFromString(strings.TrimSpace(req.MargePct))
	if err != nil || margePct.LessThan(decimal.Zero) || margePct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Margin must be between 0 and 100 exclusive",
			"data":    nil,
			"error":   "invalid marge_pct",
		})
	}

	baseCost := decimal.NewFromInt(100)
	if req.BaseCost != nil && strings.TrimSpace(*req.BaseCost) != "" {
		baseCost, err = decimal.NewFromString(strings.TrimSpace(*req.BaseCost))
		if err != nil || baseCost.LessThanOrEqual(decimal.Zero) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Base cost must be a positive number",
				"data":    nil,
				"error":   "invalid base_cost",
			})
		}
	}

	params := &models.PricingParams{
		TenantID:       payload.TenantID,
		TauxHoraireEur: tauxHoraire,
		MargePct:       margePct,
		BaseCost:       baseCost,
		UpdatedBy:      payload.Email,
	}

	saved, err := qc.QuoteRepo.UpsertPricingParams(params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save pricing parameters",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Pricing parameters saved successfully",
		"data":    saved,
		"error":   nil,
	})
}
