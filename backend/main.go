package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnity/backend/config"
	"learnity/backend/middleware"
	"learnity/backend/notify"
	"learnity/backend/routes"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{EnableColors: !cfg.IsProduction()})
	reporter := utils.NewReporter(logger, cfg.RollbarToken, cfg.AppEnv)
	defer reporter.Flush()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unavailable at %s, leaderboard falls back to the database: %v", cfg.RedisAddr, err)
			rdb = nil
		}
	}

	svc := services.New(db, cfg, services.Deps{
		Redis:  rdb,
		Mailer: notify.NewMailer(cfg.SendGridAPIKey, cfg.MailFrom, logger),
		Logger: logger,
	})
	if err := svc.Gamification.Board.Rebuild(ctx); err != nil {
		reporter.Warn("leaderboard rebuild failed: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Learnity",
		ErrorHandler: utils.ErrorHandler(reporter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger, !cfg.IsProduction()))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, svc)

	go handleShutdown(app, logger)

	// Start server
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Printf("server stopped: %v", err)
	}
}

func handleShutdown(app *fiber.App, logger *log.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Println("shutdown signal received")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
