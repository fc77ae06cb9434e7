package main

import (
	"context"
	"log"
	"os"
	"sekoly_go/config"
	"sekoly_go/database"
	"sekoly_go/database/seeders"
	"sekoly_go/handlers"
	"sekoly_go/middleware"
	"sekoly_go/routes"
	"sekoly_go/services"
	"sekoly_go/services/notifications"
	"sekoly_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func init() {
	setupLogging()

	config.LoadConfig()

	database.Connect()

	if os.Getenv("SEED_DB") == "true" {
		seeders.SeedAll()
	}
}

func main() {
	// Log maintenance: hourly flush, daily archive to S3
	logArchiveService := services.NewLogArchiveService()
	logArchiveService.StartLogMaintenanceScheduler()

	// LINE push channel, optional
	var lineService *services.LineMessagingService
	if config.AppConfig.EnableLineNotifications {
		var err error
		lineService, err = services.NewLineMessagingService()
		if err != nil {
			log.Printf("LINE notifications disabled: %v", err)
			lineService = nil
		}
	}

	// Notification queue worker
	var pusher notifications.Pusher
	if lineService != nil {
		pusher = lineService
	}
	notifService := notifications.NewService(database.GetDB(), database.GetRedisClient(), pusher)
	notifService.StartWorker(context.Background())

	// Monthly arrears sweep
	if config.AppConfig.EnableArrearsSweep {
		arrearsScheduler := services.NewArrearsScheduler(notifService)
		arrearsScheduler.Start()
	}

	// Import file retention in S3, optional
	store, err := storage.NewStorageService()
	if err != nil {
		log.Printf("Import file archiving disabled: %v", err)
		store = nil
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(config.AppConfig.MaxImportSize),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.LogActivityMiddleware())

	routes.SetupRoutes(app, notifService, logArchiveService, store)

	// LINE webhook for guardian account linking
	if os.Getenv("LINE_CHANNEL_SECRET") != "" && os.Getenv("LINE_CHANNEL_ACCESS_TOKEN") != "" {
		lineHandler := handlers.NewLineWebhookHandler(database.DB)
		app.Post("/line/webhook", lineHandler.Handle)
		log.Println("LINE webhook enabled at /line/webhook")
	}

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	log.Printf("Server starting on port %s", config.AppConfig.Port)
	log.Printf("Environment: %s", config.AppConfig.AppEnv)

	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// setupLogging configures the logging system
func setupLogging() {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(getEnvDefault("LOG_LEVEL", "info"))
	if err == nil {
		logrus.SetLevel(level)
	}

	if os.Getenv("APP_ENV") == "development" {
		logrus.SetOutput(os.Stdout)
	} else {
		file, err := os.OpenFile("logs/app.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logrus.SetOutput(file)
		}
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
