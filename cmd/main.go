package main

import (
	"context"
	"encoding/gob"
	"time"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/internal/bootstrap"
	internal_services "dpgf-quoting-backend/internal/services"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/token"
	"dpgf-quoting-backend/utils"
	"dpgf-quoting-backend/websocket"

	// Repositories
	bleveRepositories "dpgf-quoting-backend/bleve/repositories"
	catalogue_repositories "dpgf-quoting-backend/catalogue/repositories"
	imports_repositories "dpgf-quoting-backend/imports/repositories"
	mappings_repositories "dpgf-quoting-backend/mappings/repositories"
	quotes_repositories "dpgf-quoting-backend/quotes/repositories"
	users_repositories "dpgf-quoting-backend/users/repositories"

	// Services
	bleveServices "dpgf-quoting-backend/bleve/services"
	imports_tasks "dpgf-quoting-backend/imports/tasks"
	mappings_services "dpgf-quoting-backend/mappings/services"
	quotes_services "dpgf-quoting-backend/quotes/services"

	// Routes
	bleveControllers "dpgf-quoting-backend/bleve/controllers"
	bleveRoutes "dpgf-quoting-backend/bleve/routes"
	catalogue_routes "dpgf-quoting-backend/catalogue/routes"
	import_routes "dpgf-quoting-backend/imports/routes"
	mapping_routes "dpgf-quoting-backend/mappings/routes"
	quote_routes "dpgf-quoting-backend/quotes/routes"
	user_routes "dpgf-quoting-backend/users/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// staleQuoteNotifier pushes stale-pricing notifications from the
// nightly sweep onto the quote's websocket channel.
type staleQuoteNotifier struct {
	hub *websocket.Hub
}

func (n *staleQuoteNotifier) NotifyQuoteStale(tenantID, quoteID uuid.UUID, reference string) {
	channel := websocket.QuoteChannel(quoteID)
	n.hub.BroadcastToChannel(tenantID, channel, websocket.WebSocketMessage{
		Type: websocket.MessageTypeQuoteStale,
		Payload: fiber.Map{
			"quote_id":        quoteID.String(),
			"reference":       reference,
			"requires_update": true,
		},
		Timestamp: time.Now(),
		ChannelID: channel,
	})
}

func main() {
	config.InitLogger()

	if err := godotenv.Load(".env"); err != nil {
		config.Logger.Warn("No .env file found, relying on process environment")
	}
	gob.Register(uuid.UUID{})

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})
	middleware.InitCors(app)

	db := config.ConfigureDatabase()
	port := config.GetEnvOrDefault("PORT", "8080")
	ctx := context.Background()

	redisAddr := config.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379")
	redisClient := config.InitRedisServer(ctx)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: config.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:       0,
	}
	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	tokenKey := config.GetEnv("TOKEN_SYMMETRIC_KEY")
	tokenMaker, err := token.NewPasetoMaker(tokenKey)
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	indexPath := config.GetEnvOrDefault("BLEVE_INDEX_PATH", "./bleve_data")
	uploadDir := config.GetEnvOrDefault("UPLOAD_DIR", "./uploads")

	utils.InitializeMailer()
	if utils.GetMailer() == nil {
		config.Logger.Fatal("Mailer not initialized")
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Serve generated artifacts (error reports, quote PDFs) and uploads.
	app.Static("/public", "./public")
	app.Static("/uploads", uploadDir)

	// Repositories
	bleveIndexingService := bleveServices.NewIndexingService(config.Logger, indexPath)
	bleveServiceRepo, bleveInterfaceRepo := bleveRepositories.NewBleveRepository(bleveIndexingService)
	userRepo := users_repositories.NewUserRepository(db)
	importRepo := imports_repositories.NewImportRepository(db)
	mappingRepo := mappings_repositories.NewMappingRepository(db)
	catalogueRepo := catalogue_repositories.NewCatalogueRepository(db)
	quoteRepo := quotes_repositories.NewQuoteRepository(db)

	// Pricing engine and calculator
	pricingEngine := quotes_services.NewEngine(config.Logger)
	calculator := quotes_services.NewCalculatorService(quoteRepo, catalogueRepo, pricingEngine, config.Logger)
	calculator.SetStaleNotifier(&staleQuoteNotifier{hub: wsHub})

	// AI mapping suggestions are optional; without an API key the
	// suggestion cascade stops at template matches.
	var aiSuggester *mappings_services.AISuggester
	if apiKey := config.GetGeminiAPIKey(); apiKey != "" {
		geminiService, err := internal_services.NewGeminiService(apiKey)
		if err != nil {
			config.Logger.Warn("Failed to initialize Gemini service, AI suggestions disabled", zap.Error(err))
		} else {
			aiSuggester = mappings_services.NewAISuggester(geminiService)
		}
	} else {
		config.Logger.Warn("GEMINI_API_KEY not set, AI suggestions disabled")
	}

	// Background worker for import parsing
	asynqServer := asynq.NewServer(asynqRedisOpt, asynq.Config{
		Concurrency: 5,
	})
	mux := asynq.NewServeMux()
	importTaskHandler := imports_tasks.NewImportTaskHandler(importRepo, wsHub)
	mux.HandleFunc(imports_tasks.TypeImportParse, importTaskHandler.HandleImportParseTask)
	go func() {
		if err := asynqServer.Run(mux); err != nil {
			config.Logger.Fatal("Asynq server failed", zap.Error(err))
		}
	}()

	// Routes
	user_routes.InitRoutes(app, userRepo, ctx, redisClient, tokenMaker, db)
	import_routes.ImportRouterInit(app, importRepo, asynqClient, ctx, redisClient, tokenMaker, uploadDir)
	mapping_routes.MappingRouterInit(app, db, mappingRepo, importRepo, aiSuggester, ctx, redisClient, tokenMaker)
	catalogue_routes.CatalogueRouterInit(app, db, catalogueRepo, bleveInterfaceRepo, ctx, redisClient, tokenMaker)
	quote_routes.QuoteRouterInit(app, quoteRepo, calculator, ctx, redisClient, tokenMaker)

	bleveController := bleveControllers.NewSearchController(bleveServiceRepo)
	bleveRoutes.InitBleveRoutes(app, bleveController, ctx, redisClient, tokenMaker)

	// WebSocket endpoint for import progress and stale quote pushes
	wsHandler := websocket.NewWsHandler(wsHub, tokenMaker)
	app.Get("/ws", wsHandler.HandleWebSocket)

	// Rebuild per-tenant search indices from the catalogue at startup
	bootstrap.IndexBleveData(ctx, catalogueRepo, bleveInterfaceRepo)

	if err := config.SeedInitialData(db); err != nil {
		config.Logger.Error("Initial data seeding failed", zap.Error(err))
	}

	// Nightly jobs: stale pricing sweep and generated-file cleanup
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 2 * * *", func() {
		if err := calculator.SweepStalePricing(); err != nil {
			config.Logger.Error("Stale pricing sweep failed", zap.Error(err))
		}
	}); err != nil {
		config.Logger.Fatal("Failed to schedule stale pricing sweep", zap.Error(err))
	}
	if _, err := scheduler.AddFunc("0 1 * * *", func() {
		if err := utils.CleanupGeneratedFiles(7 * 24 * time.Hour); err != nil {
			config.Logger.Error("Generated file cleanup failed", zap.Error(err))
		}
	}); err != nil {
		config.Logger.Fatal("Failed to schedule file cleanup", zap.Error(err))
	}
	scheduler.Start()

	config.Logger.Info("Server starting", zap.String("port", port))
	config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(app.Listen(":"+port)))
}
