package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/norawee/meetroom_backend/controllers"
	"github.com/norawee/meetroom_backend/database"
	"github.com/norawee/meetroom_backend/middleware"
	"github.com/norawee/meetroom_backend/websocket"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Meeting Room API
// @version         1.0
// @description     API Server for Video Meeting Rooms
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

	// Initialize database
	database.Connect()
	database.Migrate()

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

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
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Routes open to guests
	public := router.Group("/api")
	public.Use(middleware.OptionalJWTAuth())
	{
		public.POST("/join", controllers.JoinRoom)
		public.GET("/rooms/:code/info", controllers.RoomStatus)
		public.GET("/rooms/:code/participants", controllers.ListParticipants)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// Room routes
		api.GET("/rooms", controllers.GetRooms)
		api.POST("/rooms", controllers.CreateRoom)
		api.GET("/rooms/:code", controllers.GetRoom)
		api.PUT("/rooms/:code", controllers.UpdateRoom)
		api.DELETE("/rooms/:code", controllers.DeleteRoom)
		api.POST("/rooms/:code/start", controllers.StartMeeting)
		api.POST("/rooms/:code/end", controllers.EndMeeting)
		api.POST("/rooms/:code/leave", controllers.LeaveRoom)
		api.PATCH("/rooms/:code/status", controllers.UpdateParticipantStatus)

		// Chat routes
		api.GET("/rooms/:code/chat", controllers.GetChatMessages)
		api.POST("/rooms/:code/chat", controllers.CreateChatMessage)
	}

	// WebSocket route for room event streams
	router.GET("/ws", websocket.HandleConnection)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
