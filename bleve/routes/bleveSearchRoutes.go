package routes

import (
	"context"

	"dpgf-quoting-backend/bleve/controllers"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func InitBleveRoutes(
	app *fiber.App,
	controller *controllers.SearchController,
	ctx context.Context,
	redisClient *redis.Client,
	tokenMaker token.Maker,
) {
	appContext := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	api := app.Group("/api/v1/search")
	api.Use(middleware.ProtectedRoute(appContext))

	api.Get("/catalogue", controller.SearchCatalogueItemsController)
}
