package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/goplan-app/goplan-server/internal/container"
	"github.com/goplan-app/goplan-server/internal/handlers"
	"github.com/goplan-app/goplan-server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container.
func SetupRoutes(ct *container.Container) *gin.Engine {
	if ct.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{ct.Config.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(ct.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "goplan-api",
			})
		})
	}

	// Auth endpoints are rate limited per client IP.
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(ct.RedisClient, 10, time.Minute))
	{
		auth.POST("/register", handlers.Register(ct.AuthService))
		auth.POST("/login", handlers.Login(ct.AuthService))
		auth.POST("/google", handlers.GoogleAuth(ct.AuthService, ct.Config.GoogleClientID))
		auth.POST("/facebook", handlers.FacebookAuth(ct.AuthService))
	}

	// Browsing works anonymously: only public plans and profiles are
	// visible then.
	browse := v1.Group("/")
	browse.Use(middleware.OptionalAuth(ct.AuthService))
	{
		browse.GET("/plans", handlers.GetPlans(ct.PlanService))
		browse.GET("/plans/:planId", handlers.GetPlan(ct.PlanService))
		browse.GET("/user/:userId", handlers.GetUser(ct.UserService))
		browse.GET("/user/:userId/plans", handlers.GetUserPlans(ct.PlanService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.Auth(ct.AuthService))

	protected.GET("/auth/me", handlers.Me())

	planRoutes := protected.Group("/plans")
	{
		planRoutes.POST("/", handlers.CreatePlan(ct.PlanService))
		planRoutes.PUT("/:planId", handlers.UpdatePlan(ct.PlanService))
		planRoutes.POST("/:planId/join", handlers.JoinPlan(ct.PlanService))
		planRoutes.POST("/:planId/leave", handlers.LeavePlan(ct.PlanService))
		planRoutes.PUT("/:planId/participants/:participantId", handlers.UpdateParticipantStatus(ct.PlanService))
	}

	chatRoutes := protected.Group("/plans/:planId/chat")
	{
		chatRoutes.GET("/", handlers.GetChat(ct.ChatService))
		chatRoutes.POST("/messages", handlers.SendMessage(ct.ChatService))
		chatRoutes.POST("/read", handlers.MarkMessagesAsRead(ct.ChatService))
		chatRoutes.GET("/unread", handlers.GetUnreadCount(ct.ChatService))
	}

	userRoutes := protected.Group("/user")
	{
		userRoutes.PUT("/profile", handlers.UpdateProfile(ct.UserService))
		userRoutes.PUT("/settings", handlers.UpdateSettings(ct.UserService))
		userRoutes.GET("/plans", handlers.GetOwnPlans(ct.PlanService))
		userRoutes.POST("/friends/:friendId", handlers.AddFriend(ct.UserService))
		userRoutes.DELETE("/friends/:friendId", handlers.RemoveFriend(ct.UserService))
		userRoutes.POST("/avatar", handlers.UploadAvatar(ct.UploadService))
		userRoutes.POST("/photos", handlers.UploadPhotos(ct.UploadService))
		userRoutes.DELETE("/photos", handlers.DeletePhoto(ct.UploadService))
	}

	return r
}
