package controllers

import (
	"context"
	"strings"

	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/quotes/repositories"
	"dpgf-quoting-backend/quotes/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteController struct {
	QuoteRepo  repositories.QuoteRepository
	Calculator *services.CalculatorService
	Ctx        context.Context
}

type quoteLineRequest struct {
	CatalogueItemID string `json:"catalogue_item_id"`
	Quantite        string `json:"quantite"`
}

type createQuoteRequest struct {
	Reference  string  `json:"reference"`
	ClientName string  `json:"client_name"`
	Lot        *string `json:"lot"`

	// Optional per-quote overrides; tenant pricing params fill the gaps.
	TauxHoraireEur *string `json:"taux_horaire_eur"`
	MargePct       *string `json:"marge_pct"`
	BaseCost       *string `json:"base_cost"`

	Lines []quoteLineRequest `json:"lines"`
}

func (qc *QuoteController) CreateQuote(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	var req createQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	if strings.TrimSpace(req.Reference) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quote reference is required",
			"data":    nil,
			"error":   "missing reference",
		})
	}
	if strings.TrimSpace(req.ClientName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Client name is required",
			"data":    nil,
			"error":   "missing client_name",
		})
	}
	if len(req.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A quote needs at least one line",
			"data":    nil,
			"error":   "missing lines",
		})
	}

	// Resolve the pricing context: explicit overrides win, otherwise
	// the tenant's stored params apply.
	params, err := qc.QuoteRepo.GetPricingParams(payload.TenantID)
	if err != nil && (req.TauxHoraireEur == nil || req.MargePct == nil) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "No pricing parameters configured for this tenant; provide taux_horaire_eur and marge_pct",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	resolveDecimal := func(override *string, fallback decimal.Decimal, field string) (decimal.Decimal, error) {
		if override == nil || strings.TrimSpace(*override) == "" {
			return fallback, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(*override))
		if err != nil {
			return decimal.Zero, fiber.NewError(fiber.StatusBadRequest, "Invalid value for "+field)
		}
		return d, nil
	}

	var tauxHoraire, margePct, baseCost decimal.Decimal
	fallbackTaux, fallbackMarge, fallbackBase := decimal.Zero, decimal.Zero, decimal.NewFromInt(100)
	if params != nil {
		fallbackTaux = params.TauxHoraireEur
		fallbackMarge = params.MargePct
		fallbackBase = params.BaseCost
	}
	if tauxHoraire, err = resolveDecimal(req.TauxHoraireEur, fallbackTaux, "taux_horaire_eur"); err == nil {
		if margePct, err = resolveDecimal(req.MargePct, fallbackMarge, "marge_pct"); err == nil {
			baseCost, err = resolveDecimal(req.BaseCost, fallbackBase, "base_cost")
		}
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid pricing overrides",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	lines := make([]models.QuoteLine, 0, len(req.Lines))
	for i, lineReq := range req.Lines {
		itemID, err := uuid.Parse(strings.TrimSpace(lineReq.CatalogueItemID))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid catalogue_item_id on quote line",
				"data":    fiber.Map{"line": i},
				"error":   err.Error(),
			})
		}
		quantite, err := decimal.NewFromString(strings.TrimSpace(lineReq.Quantite))
		if err != nil || quantite.LessThanOrEqual(decimal.Zero) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Quantity must be a positive number",
				"data":    fiber.Map{"line": i},
				"error":   "invalid quantite",
			})
		}
		lines = append(lines, models.QuoteLine{
			CatalogueItemID: itemID,
			Quantite:        quantite,
		})
	}

	quote := &models.Quote{
		TenantID:       payload.TenantID,
		Reference:      strings.TrimSpace(req.Reference),
		ClientName:     strings.TrimSpace(req.ClientName),
		Lot:            req.Lot,
		Status:         models.QuoteStatusDraft,
		TauxHoraireEur: tauxHoraire,
		MargePct:       margePct,
		BaseCost:       baseCost,
		Lines:          lines,
		CreatedBy:      payload.Email,
	}

	created, err := qc.QuoteRepo.CreateQuote(quote)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create quote",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Quote created successfully",
		"data":    created,
		"error":   nil,
	})
}

func (qc *QuoteController) GetSingleQuote(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid quote ID",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	quote, err := qc.QuoteRepo.GetQuoteByID(payload.TenantID, quoteID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Quote not found",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Quote retrieved successfully",
		"data":    quote,
		"error":   nil,
	})
}
