package controllers

import (
	"dpgf-quoting-backend/bleve/models"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func (c *SearchController) SearchCatalogueItemsController(ctx *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	query := ctx.Query("q")
	if query == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Search query is required",
		})
	}

	results, err := c.repo.SearchCatalogueItems(payload.TenantID, query)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	response := models.SearchResponse{Total: results.Total}
	for _, hit := range results.Hits {
		response.Hits = append(response.Hits, models.SearchHit{
			ID:     hit.ID,
			Score:  hit.Score,
			Fields: hit.Fields,
		})
	}

	return ctx.JSON(fiber.Map{
		"results": response.Hits,
		"total":   response.Total,
	})
}
