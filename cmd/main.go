package main

import (
	"golang-civic-backend/configs"
	"golang-civic-backend/internal/handlers"
	"golang-civic-backend/internal/middleware"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/repositories"
	"golang-civic-backend/internal/services"
	"golang-civic-backend/pkg/auth"
	"golang-civic-backend/pkg/cache"
	"golang-civic-backend/pkg/database"
	"golang-civic-backend/pkg/messaging"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	// Initialize database connection
	db, err := database.NewDatabase(config.Database.PostgresURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	if err := autoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(config.Redis.URL, config.Redis.Password, config.Redis.DB)
	if redisCache == nil {
		log.Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Initialize Kafka
	kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers)
	defer kafkaProducer.Close()
	kafkaConsumer := messaging.NewKafkaConsumer(config.Kafka.Brokers, config.Kafka.GroupID)
	defer kafkaConsumer.Close()

	// Initialize JWT manager (access: 1 hour, refresh: 30 days)
	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours, 30)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	areaRepo := repositories.NewAreaRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	vendorRepo := repositories.NewVendorRepository(db)
	complaintRepo := repositories.NewComplaintRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)

	// Initialize services
	provisioningService := services.NewProvisioningService(profileRepo, userRepo)
	authService := services.NewAuthService(userRepo, provisioningService, jwtManager, redisCache, kafkaProducer, config.Kafka.Brokers)
	profileService := services.NewProfileService(profileRepo, areaRepo)
	areaService := services.NewAreaService(areaRepo)
	vendorService := services.NewVendorService(vendorRepo, profileRepo, areaRepo, redisCache)
	complaintService := services.NewComplaintService(complaintRepo, profileRepo, areaRepo, vendorRepo, kafkaProducer, config.Kafka.Brokers)
	ratingService := services.NewRatingService(ratingRepo, vendorRepo, profileRepo, redisCache, kafkaProducer, config.Kafka.Brokers)

	// Reconcile profiles from identity events in the background
	go kafkaConsumer.ConsumeMessages(messaging.TopicIdentityCreated, config.Kafka.Brokers, config.Kafka.GroupID, provisioningService.HandleIdentityEvent)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	areaHandler := handlers.NewAreaHandler(areaService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	complaintHandler := handlers.NewComplaintHandler(complaintService)
	ratingHandler := handlers.NewRatingHandler(ratingService)

	// Initialize Gin router
	router := gin.New()

	// Global middleware
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "golang-civic-backend",
		})
	})

	// API routes
	api := router.Group("/api/v1")

	// Register routes
	authHandler.RegisterRoutes(api, authMiddleware)
	profileHandler.RegisterRoutes(api, authMiddleware)
	areaHandler.RegisterRoutes(api, authMiddleware)
	vendorHandler.RegisterRoutes(api, authMiddleware)
	complaintHandler.RegisterRoutes(api, authMiddleware)
	ratingHandler.RegisterRoutes(api, authMiddleware)

	log.Printf("Server starting on port %s", config.Server.Port)
	log.Fatal(router.Run(":" + config.Server.Port))
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Area{},
		&models.Profile{},
		&models.Vendor{},
		&models.Complaint{},
		&models.Rating{},
	)
}
