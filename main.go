package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"challenge-streak-system/ai"
	"challenge-streak-system/handlers"
	"challenge-streak-system/middleware"
	"challenge-streak-system/models"
	"challenge-streak-system/services"
	"challenge-streak-system/stores"
	"challenge-streak-system/utils"
	"challenge-streak-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // photos only, 32MB is plenty
	})

	// 🔐 GLOBAL: Only Gateway requests allowed (GET /uploads excepted so the
	// verifier can fetch locally stored photos back)
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	if !utils.R2Enabled() {
		log.Println("⚠️  R2 not configured, completion photos will be stored on local disk")
		if err := utils.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Challenge{},
		&models.UserChallenge{},
		&models.User{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	catalogStore := stores.NewCatalogStore(db)
	relationshipStore := stores.NewRelationshipStore(db)
	userStore := stores.NewUserStore(db)
	notificationStore := stores.NewNotificationStore(db)

	if err := catalogStore.Seed(context.Background(), stores.SeedChallenges); err != nil {
		log.Printf("⚠️  catalog seed failed: %v", err)
	}

	verifier := ai.NewVerifierFromEnv()
	if !verifier.Configured() {
		log.Println("⚠️  VISION_API_KEY not set, all verifications will fail closed")
	}

	notificationService := services.NewNotificationService(notificationStore)
	streakService := services.NewStreakService(relationshipStore, catalogStore, userStore, notificationService)
	challengeService := services.NewChallengeService(catalogStore, relationshipStore, userStore, verifier, streakService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reminderWorker := workers.NewStreakReminderWorker(db, notificationService)
	reminderWorker.Start(ctx)

	handlers.SetupChallengeRoutes(app, catalogStore, challengeService, streakService, notificationService)
	handlers.SetupNotificationRoutes(app, notificationStore)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ GatewayAuthMiddleware enforced globally, all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
