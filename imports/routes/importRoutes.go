package router

import (
	"context"

	"dpgf-quoting-backend/imports/controllers"
	"dpgf-quoting-backend/imports/repositories"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func ImportRouterInit(
	app *fiber.App,
	importRepo repositories.ImportRepository,
	asynqClient *asynq.Client,
	ctx context.Context,
	redisClient *redis.Client,
	tokenMaker token.Maker,
	uploadDir string,
) {
	importController := &controllers.ImportController{
		ImportRepo:  importRepo,
		AsynqClient: asynqClient,
		Ctx:         ctx,
		UploadDir:   uploadDir,
	}

	appContext := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	importRoutes := app.Group("/api/v1/imports")
	importRoutes.Use(middleware.ProtectedRoute(appContext))
	{
		importRoutes.Get("/filtered", importController.GetFilteredImportsController)
		importRoutes.Post("/", middleware.RequireEditor(), importController.UploadImport)
		importRoutes.Get("/:id", importController.GetImportStatus)
		importRoutes.Get("/:id/rows", importController.PreviewImportRows)
	}
}
