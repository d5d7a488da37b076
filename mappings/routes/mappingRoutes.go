package router

import (
	"context"

	imports_repositories "dpgf-quoting-backend/imports/repositories"
	"dpgf-quoting-backend/mappings/controllers"
	"dpgf-quoting-backend/mappings/repositories"
	"dpgf-quoting-backend/mappings/services"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func MappingRouterInit(
	app *fiber.App,
	db *gorm.DB,
	mappingRepo repositories.MappingRepository,
	importRepo imports_repositories.ImportRepository,
	aiSuggester *services.AISuggester,
	ctx context.Context,
	redisClient *redis.Client,
	tokenMaker token.Maker,
) {
	mappingController := &controllers.MappingController{
		MappingRepo: mappingRepo,
		ImportRepo:  importRepo,
		DB:          db,
		Ctx:         ctx,
		AISuggester: aiSuggester,
	}

	appContext := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	mappingRoutes := app.Group("/api/v1/mappings")
	mappingRoutes.Use(middleware.ProtectedRoute(appContext))
	{
		mappingRoutes.Get("/templates", mappingController.GetTemplates)
		mappingRoutes.Post("/templates", middleware.RequireEditor(), mappingController.SaveTemplate)

		mappingRoutes.Get("/:import_id", mappingController.GetMappings)
		mappingRoutes.Post("/:import_id", middleware.RequireEditor(), mappingController.SaveMappings)
		mappingRoutes.Get("/:import_id/suggestions", mappingController.GetSuggestions)
		mappingRoutes.Post("/:import_id/validate", mappingController.ValidateRows)
		mappingRoutes.Post("/:import_id/duplicates", mappingController.DetectDuplicates)
	}
}
