package controllers

import (
	"fmt"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportQuotePdf renders a quote as an A4 PDF and returns a download
// link. Draft quotes must be calculated first so the printed totals
// match stored state.
func (qc *QuoteController) ExportQuotePdf(c *fiber.Ctx) error {
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

	if quote.Status == models.QuoteStatusDraft {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Quote must be calculated before export",
			"data":    nil,
			"error":   "quote is still a draft",
		})
	}

	filename := fmt.Sprintf("devis_%s_%s.pdf", quote.Reference, quote.ID.String()[:8])
	filePath, err := utils.GenerateQuotePdf(quote, filename)
	if err != nil {
		config.Logger.Error("Quote PDF generation failed",
			zap.String("quote_id", quoteID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate quote PDF",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Quote PDF generated successfully",
		"data": fiber.Map{
			"download_link": utils.GenerateDownloadLink(filePath),
		},
		"error": nil,
	})
}
