package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/relaychat/chat_backend/chat"
	"github.com/relaychat/chat_backend/controllers"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/docs"
	"github.com/relaychat/chat_backend/middleware"
	"github.com/relaychat/chat_backend/stream"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Relay Chat API
// @version         1.0
// @description     API Server for the real-time chat backend
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize the user store and the broker
	database.Connect()
	database.Migrate()
	database.ConnectRedis()

	if err := chat.Bootstrap(context.Background()); err != nil {
		log.Fatalf("Failed to bootstrap broker state: %v", err)
	}

	// Broadcast distributor: one hub, one subscription loop, one instance id
	// per process
	serverID := uuid.NewString()
	hub := stream.NewHub()
	go hub.Run()

	dispatcher := stream.NewDispatcher(database.RDB, hub, serverID)
	go dispatcher.Listen(context.Background())
	controllers.Streamer = dispatcher

	// Set up Swagger info
	docs.SwaggerInfo.Title = "Relay Chat API"
	docs.SwaggerInfo.Description = "API Server for the real-time chat backend"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + os.Getenv("PORT")
	if docs.SwaggerInfo.Host == "localhost:" {
		docs.SwaggerInfo.Host = "localhost:8080"
	}
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/login", controllers.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		api.POST("/logout", controllers.Logout)
		api.GET("/me", controllers.Me)

		// User routes
		api.GET("/users", controllers.GetUsers)
		api.GET("/users/online", controllers.GetOnlineUsers)

		// Room routes
		api.GET("/rooms/:id", controllers.GetRooms)
		api.POST("/rooms/private", controllers.CreatePrivateRoom)
		api.GET("/rooms/:id/messages", controllers.GetMessages)

		// Message routes
		api.POST("/messages", controllers.CreateMessage)
	}

	// Live stream routes
	live := router.Group("/")
	live.Use(middleware.JWTAuth())
	{
		live.GET("/stream", stream.SSEHandler(hub))
		live.GET("/ws", stream.WSHandler(hub))
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server running on port %s (instance %s)", port, serverID)
	log.Printf("Swagger documentation available at http://localhost:%s/swagger/index.html", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
