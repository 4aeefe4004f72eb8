package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cleanup-jobs-system/handlers"
	"cleanup-jobs-system/middleware"
	"cleanup-jobs-system/models"
	"cleanup-jobs-system/services"
	"cleanup-jobs-system/utils"
	"cleanup-jobs-system/workers"

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
		BodyLimit: 20 * 1024 * 1024, // 20MB — proof photos only
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
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
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	localPhotos := strings.EqualFold(os.Getenv("PHOTO_STORAGE"), "local")
	if localPhotos {
		if err := utils.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
	} else {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	}

	// TranslateError maps unique-index violations to gorm.ErrDuplicatedKey,
	// which the claim ledger relies on to report losing racers as conflicts.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.JobClaim{},
		&models.CleanupStats{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}
	if err := services.EnsureClaimIndexes(db); err != nil {
		log.Fatal("failed to create claim indexes:", err)
	}

	policy := services.LoadClaimPolicy()

	feedService := services.NewFeedService()
	statsService := services.NewStatsService(db)
	claimService := services.NewClaimService(db, policy, statsService)
	uploadService := services.NewUploadService()

	claimService.StartExpiryScheduler()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Verdict polling is optional — without a verifier service, verdicts
	// arrive through the /admin endpoints instead
	if os.Getenv("VERIFIER_SERVICE_URL") != "" {
		verdictClient := workers.NewVerdictSyncClient(claimService)
		go workers.PollVerdicts(ctx, verdictClient, 30*time.Second)
		log.Println("✅ Verdict polling running (every 30s)")
	}

	handlers.SetupJobRoutes(app, feedService, claimService, uploadService)
	handlers.SetupDashboardRoutes(app, statsService)

	if localPhotos {
		app.Static("/uploads", "./uploads")
	}

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Printf("✅ Claim policy: reopen_after_reject=%t claim_ttl=%s", policy.ReopenAfterReject, policy.ClaimTTL)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
