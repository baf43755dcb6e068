package main

import (
	"log"

	"navboard-be/config"
	"navboard-be/internal/handlers"
	"navboard-be/internal/middleware"
	"navboard-be/internal/models"
	"navboard-be/internal/repository"
	"navboard-be/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize repositories
	appRepo := repository.NewAppRepository(cfg)
	snapshotRepo := repository.NewSnapshotRepository(cfg, appRepo)

	// Initialize services
	loginLimiter := services.NewLoginLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)

	// Initialize handlers
	normOpts := models.NormalizeOptions{RecycleRetentionDays: cfg.RecycleRetentionDays}
	authHandler := handlers.NewAuthHandler(cfg, loginLimiter)
	homeHandler := handlers.NewHomeHandler(appRepo, snapshotRepo, normOpts)
	configHandler := handlers.NewConfigHandler(appRepo)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotRepo)
	searchHandler := handlers.NewSearchHandler(appRepo)
	mediaHandler := handlers.NewMediaHandler(cfg)
	unsplashHandler := handlers.NewUnsplashHandler(cfg)
	siteHandler := handlers.NewSiteHandler(appRepo)

	// Initialize Gin
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// Uploaded images
	r.Static("/media", cfg.MediaDir)

	// Public routes
	public := r.Group("/api")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "navboard API is running",
			})
		})

		public.GET("/public/site", siteHandler.Get)

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/session", authHandler.Session)
		}
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		// Dashboard data
		protected.GET("/home", homeHandler.Get)
		protected.PUT("/home", homeHandler.Put)
		protected.POST("/home/import", homeHandler.Import)

		// Configuration keys
		protected.GET("/config", configHandler.Get)
		protected.POST("/config", configHandler.Post)
		protected.DELETE("/config", configHandler.Delete)

		// Snapshots
		protected.GET("/snapshots", snapshotHandler.Get)
		protected.POST("/snapshots", snapshotHandler.Post)
		protected.DELETE("/snapshots", snapshotHandler.Delete)

		// Search index
		protected.GET("/search", searchHandler.Get)

		// Media library
		protected.POST("/upload", mediaHandler.Upload)
		protected.GET("/media", mediaHandler.List)

		// Unsplash proxy
		protected.GET("/unsplash", unsplashHandler.SearchCollections)
		protected.POST("/unsplash", unsplashHandler.CollectionPhotos)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Data directory: %s", cfg.DataDir)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
