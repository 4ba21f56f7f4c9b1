package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/controllers"
	"github.com/book-a-meal/book-a-meal-api/middleware"
	"github.com/book-a-meal/book-a-meal-api/models"
	"github.com/book-a-meal/book-a-meal-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Book-A-Meal API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.Menu{},
		&models.Order{},
		&models.OrderLine{},
		&models.RevokedToken{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Meal image storage (optional; endpoints degrade gracefully without it)
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Println("Image uploads enabled")
	} else {
		log.Println("AWS_S3_BUCKET not set, image uploads disabled")
	}

	// Menu update notification worker (optional)
	if cfg.SMTPHost != "" {
		services.InitNotificationService(db, services.NewSMTPSender(cfg))
		log.Println("Menu notifications enabled")
	} else {
		log.Println("SMTP_HOST not set, menu notifications disabled")
	}

	// Initialize Gin router
	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the router with middleware and the full route table
func setupRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.Default())

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Public auth endpoints
		v1.POST("/auth/signup", controllers.Signup)
		v1.POST("/auth/login", controllers.Login)

		// Authenticated endpoints
		authed := v1.Group("")
		authed.Use(middleware.EnsureValidToken())
		{
			authed.GET("/auth/logout", controllers.Logout)

			authed.GET("/menu", controllers.GetMenu)

			authed.POST("/orders", controllers.PlaceOrder)
			authed.GET("/orders", controllers.ListOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.PUT("/orders/:id", controllers.UpdateOrder)
			authed.PATCH("/orders/:id", controllers.RemoveOrderLines)

			// Caterer/admin endpoints
			admin := authed.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/menu", controllers.PublishMenu)
				admin.PATCH("/orders/serve/:id", controllers.ServeOrder)

				admin.POST("/meals", controllers.CreateMeal)
				admin.GET("/meals", controllers.ListMeals)
				admin.GET("/meals/:id", controllers.GetMeal)
				admin.PUT("/meals/:id", controllers.UpdateMeal)
				admin.DELETE("/meals/:id", controllers.DeleteMeal)
				admin.POST("/meals/:id/image", controllers.UploadMealImage)
			}

			// Super admin endpoints
			super := authed.Group("")
			super.Use(middleware.RequireSuperAdmin())
			{
				super.GET("/users", controllers.ListUsers)
				super.GET("/users/:id", controllers.GetUser)
				super.PUT("/users/promote/:id", controllers.PromoteUser)
				super.DELETE("/users/:id", controllers.DeactivateUser)
			}
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Book-A-Meal API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
