package controllers

import (
	"strings"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CalculateQuote runs the pricing pass for a quote and persists line
// results and totals.
func (qc *QuoteController) CalculateQuote(c *fiber.Ctx) error {
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

	quote, result, report, err := qc.Calculator.CalculateQuote(payload.TenantID, quoteID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Quote not found",
				"data":    nil,
				"error":   err.Error(),
			})
		}
		config.Logger.Error("Quote calculation failed",
			zap.String("quote_id", quoteID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to calculate quote",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Quote calculated successfully",
		"data": fiber.Map{
			"quote":          quote,
			"totals":         result,
			"quality_report": report,
		},
		"error": nil,
	})
}

// GetQualityReport recomputes quality flags for a quote without
// persisting anything.
func (qc *QuoteController) GetQualityReport(c *fiber.Ctx) error {
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

	report, err := qc.Calculator.QualityReportFor(payload.TenantID, quoteID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Quote not found",
				"data":    nil,
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to build quality report",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Quality report generated successfully",
		"data":    report,
		"error":   nil,
	})
}
