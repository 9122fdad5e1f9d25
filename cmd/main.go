package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skylens/internal/almanac"
	"skylens/internal/classifier"
	"skylens/internal/database"
	"skylens/internal/handlers"
	"skylens/internal/services"
	"skylens/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load database configuration
	dbConfig := database.LoadConfig()

	// Connect to database
	db, err := database.Connect(dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// External clients
	classifierClient := classifier.NewClient(
		getEnv("CLASSIFIER_BASE_URL", "https://ai-detection-rapid-api.p.rapidapi.com"),
		os.Getenv("CLASSIFIER_API_KEY"),
	)
	almanacClient := almanac.NewClient(
		getEnv("NASA_API_BASE_URL", "https://api.nasa.gov"),
		getEnv("NASA_API_KEY", "DEMO_KEY"),
	)

	// Background almanac refresher
	var workerService *worker.Service
	if getEnv("APOD_REFRESH_ENABLED", "true") == "true" {
		almanacService := services.NewAlmanacService(db, almanacClient)
		workerService = worker.NewService(almanacService, 24*time.Hour)
		if err := workerService.Start(); err != nil {
			log.Fatal("Failed to start background workers:", err)
		}
	}

	// Setup graceful shutdown
	setupGracefulShutdown(db, workerService)

	// Setup HTTP server
	setupServer(db, classifierClient, almanacClient)
}

func setupGracefulShutdown(db *gorm.DB, workerService *worker.Service) {
	// Setup signal handling for graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		// Stop background workers
		if workerService != nil {
			workerService.Stop()
		}

		// Close database connection
		database.Close(db)

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(db *gorm.DB, classifierClient *classifier.Client, almanacClient *almanac.Client) {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	detectionsHandler := handlers.NewDetectionsHandler(db, classifierClient)
	almanacHandler := handlers.NewAlmanacHandler(db, almanacClient)
	adminHandler := handlers.NewAdminHandler(db)
	docsHandler := handlers.NewDocsHandler()

	// Health check
	r.GET("/health", detectionsHandler.HealthCheck)

	// Serve Markdown documentation as HTML
	r.GET("/docs/:doc", docsHandler.ServeMarkdownAsHTML)

	// API routes
	v1 := r.Group("/api/v1")
	{
		detections := v1.Group("/ai-detections")
		{
			detections.POST("", detectionsHandler.Create)
			detections.GET("", detectionsHandler.List)
			detections.POST("/analyze", detectionsHandler.Analyze)
			detections.GET("/:id", detectionsHandler.Get)
			detections.PUT("/:id", detectionsHandler.Update)
			detections.DELETE("/:id", detectionsHandler.Delete)
			detections.PATCH("/:id/restore", detectionsHandler.Restore)
		}

		apod := v1.Group("/nasa-apod")
		{
			apod.POST("", almanacHandler.Create)
			apod.GET("", almanacHandler.List)
			apod.GET("/fetch/today", almanacHandler.FetchToday)
			apod.GET("/fetch/date/:date", almanacHandler.FetchByDate)
			apod.GET("/:id", almanacHandler.Get)
			apod.PUT("/:id", almanacHandler.Update)
			apod.DELETE("/:id", almanacHandler.Delete)
			apod.PATCH("/:id/restore", almanacHandler.Restore)
		}
	}

	// Admin routes (password protected)
	admin := r.Group("/admin", adminHandler.AdminAuth())
	{
		admin.GET("/api/stats", adminHandler.Stats)
	}

	// Get port from environment or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
