package router

import (
	"context"

	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/quotes/controllers"
	"dpgf-quoting-backend/quotes/repositories"
	"dpgf-quoting-backend/quotes/services"
	"dpgf-quoting-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func QuoteRouterInit(
	app *fiber.App,
	quoteRepo repositories.QuoteRepository,
	calculator *services.CalculatorService,
	ctx context.Context,
	redisClient *redis.Client,
	tokenMaker token.Maker,
) {
	quoteController := &controllers.QuoteController{
		QuoteRepo:  quoteRepo,
		Calculator: calculator,
		Ctx:        ctx,
	}

	appContext := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	quoteRoutes := app.Group("/api/v1/quotes")
	quoteRoutes.Use(middleware.ProtectedRoute(appContext))
	{
		quoteRoutes.Get("/filtered", quoteController.GetFilteredQuotes)
		quoteRoutes.Post("/", middleware.RequireEditor(), quoteController.CreateQuote)

		quoteRoutes.Get("/params", quoteController.GetPricingParams)
		quoteRoutes.Put("/params", middleware.RequireEditor(), quoteController.UpsertPricingParams)

		quoteRoutes.Get("/:id", quoteController.GetSingleQuote)
		quoteRoutes.Post("/:id/calculate", middleware.RequireEditor(), quoteController.CalculateQuote)
		quoteRoutes.Get("/:id/quality", quoteController.GetQualityReport)
		quoteRoutes.Get("/:id/export", quoteController.ExportQuotePdf)
	}
}
