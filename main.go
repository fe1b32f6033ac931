package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tournament-score-system/handlers"
	"tournament-score-system/middleware"
	"tournament-score-system/models"
	"tournament-score-system/services"
	"tournament-score-system/utils"
	"tournament-score-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    utils.MaxImageUploadSize,
		ErrorHandler: utils.ErrorHandler,
	})

	// Anything a handler lets escape still leaves as an envelope
	app.Use(recover.New())

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Tournament{},
		&models.Score{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// R2 is optional: without it, only the image upload endpoints degrade
	if os.Getenv("CLOUDFLARE_ACCOUNT_ID") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	} else {
		log.Println("⚠️  CLOUDFLARE_ACCOUNT_ID not set — avatar uploads disabled")
	}

	// Redis is optional: without it, unread counts fall back to the DB
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	} else {
		log.Println("⚠️  REDIS_ADDR not set — unread-count caching disabled")
	}

	// --- Ranking service client (opaque recalculation RPC) ---
	rankingURL := os.Getenv("RANKING_SERVICE_URL")
	if rankingURL == "" {
		log.Fatal("RANKING_SERVICE_URL environment variable not set")
	}
	rankingToken := os.Getenv("RANKING_SERVICE_TOKEN")
	if rankingToken == "" {
		log.Fatal("RANKING_SERVICE_TOKEN environment variable not set")
	}
	rankingClient := services.NewRankingClient(rankingURL, rankingToken)

	tournamentService := services.NewTournamentService(db)
	scoreService := services.NewScoreService(db, rankingClient)
	profileService := services.NewProfileService(db)
	notificationService := services.NewNotificationService(db, rdb)

	// --- Profile sync worker (profile-service → local mirror) ---
	profileSyncURL := os.Getenv("PROFILE_SYNC_URL")
	if profileSyncURL == "" {
		log.Fatal("PROFILE_SYNC_URL environment variable not set")
	}
	serviceToken := os.Getenv("SCORE_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("SCORE_SERVICE_TOKEN environment variable not set")
	}
	syncWorker := workers.NewProfileSyncWorker(db, profileSyncURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)
	tournamentService.StartPublishScheduler()
	notificationService.StartRetentionJob()

	// ✅ Routes — tournament routes first so the public published listing is
	// registered ahead of any secured group
	handlers.SetupTournamentRoutes(app, tournamentService)
	handlers.SetupScoreRoutes(app, scoreService)
	handlers.SetupProfileRoutes(app, profileService)
	handlers.SetupNotificationRoutes(app, notificationService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Profile Sync Worker running")
	log.Println("✅ Publish scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
