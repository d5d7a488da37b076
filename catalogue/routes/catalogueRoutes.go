package router

import (
	"context"

	bleveRepositories "dpgf-quoting-backend/bleve/repositories"
	"dpgf-quoting-backend/catalogue/controllers"
	"dpgf-quoting-backend/catalogue/repositories"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func CatalogueRouterInit(
	app *fiber.App,
	db *gorm.DB,
	catalogueRepo repositories.CatalogueRepository,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
	ctx context.Context,
	redisClient *redis.Client,
	tokenMaker token.Maker,
) {
	catalogueController := &controllers.CatalogueController{
		CatalogueRepo: catalogueRepo,
		BleveRepo:     bleveRepo,
		DB:            db,
		Ctx:           ctx,
	}

	appContext := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	catalogueRoutes := app.Group("/api/v1/catalogue")
	catalogueRoutes.Use(middleware.ProtectedRoute(appContext))
	{
		catalogueRoutes.Get("/items/filtered", catalogueController.GetFilteredCatalogueItems)
		catalogueRoutes.Post("/items", middleware.RequireEditor(), catalogueController.CreateCatalogueItem)
		catalogueRoutes.Post("/items/bulk-upload", middleware.RequireEditor(), catalogueController.BulkUploadCatalogueItems)
		catalogueRoutes.Get("/items/:id", catalogueController.GetSingleCatalogueItem)
		catalogueRoutes.Put("/items/:id", middleware.RequireEditor(), catalogueController.UpdateCatalogueItem)
		catalogueRoutes.Delete("/items/:id", middleware.RequireEditor(), catalogueController.DeleteCatalogueItem)

		catalogueRoutes.Get("/items/:id/prices", catalogueController.GetSupplierPrices)
		catalogueRoutes.Post("/items/:id/prices", middleware.RequireEditor(), catalogueController.CreateSupplierPrice)
		catalogueRoutes.Put("/prices/:price_id", middleware.RequireEditor(), catalogueController.UpdateSupplierPrice)

		catalogueRoutes.Get("/material-indices/:matiere", catalogueController.GetMaterialIndices)
		catalogueRoutes.Post("/material-indices", middleware.RequireEditor(), catalogueController.CreateMaterialIndex)
	}
}
