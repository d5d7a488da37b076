package router

import (
	"context"

	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/token"
	"dpgf-quoting-backend/users/controllers"
	"dpgf-quoting-backend/users/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func InitRoutes(
	app *fiber.App,
	userRepo repositories.UserRepository,
	ctx context.Context,
	redisClient *redis.Client,
	tokenMaker token.Maker,
	db *gorm.DB,
) {
	loginController := &controllers.LoginController{
		UserRepo:    userRepo,
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	userController := &controllers.UserController{
		UserRepo: userRepo,
		DB:       db,
		Ctx:      ctx,
	}

	appContext := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	publicRoutes := app.Group("/api/v1")
	{
		publicRoutes.Post("/auth/login", loginController.LoginUser)
	}

	protectedRoutes := app.Group("/api/v1")
	protectedRoutes.Use(middleware.ProtectedRoute(appContext))
	{
		userRoutes := protectedRoutes.Group("/users")
		{
			userRoutes.Get("/filtered", userController.GetFilteredUsersController)
			userRoutes.Post("/", middleware.RequireEditor(), userController.CreateUser)
			userRoutes.Get("/:id", userController.RetrieveSingleUserController)
		}

		authRoutes := protectedRoutes.Group("/auth")
		{
			authRoutes.Post("/logout", loginController.LogoutUser)
		}
	}
}
