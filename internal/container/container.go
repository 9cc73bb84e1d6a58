package container

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goplan-app/goplan-server/internal/config"
	"github.com/goplan-app/goplan-server/internal/connect"
	"github.com/goplan-app/goplan-server/internal/models"
	"github.com/goplan-app/goplan-server/internal/queue"
	"github.com/goplan-app/goplan-server/internal/services"
)

// Container holds all application dependencies.
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	MongoDBClient *mongo.Client
	RedisClient   *redis.Client
	Publisher     queue.Publisher

	AuthService   *services.AuthService
	UserService   *services.UserService
	PlanService   *services.PlanService
	ChatService   *services.ChatService
	UploadService *services.UploadService
}

// NewContainer wires repositories, services, and infrastructure clients.
func NewContainer(cfg *config.Config, logger *slog.Logger, mongoClient *mongo.Client) *Container {
	repo := models.MongodbNewRepo(mongoClient, cfg.MongoDBName)

	var publisher queue.Publisher = queue.NoopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.AMQPURL, logger)
	}

	redisClient := connect.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if redisClient == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	}

	blob := connect.NewBlobHandle(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)

	authService := services.NewAuthService(repo, cfg.JWTSecret, cfg.JWTExpiration)
	userService := services.NewUserService(repo)
	planService := services.NewPlanService(repo, repo, publisher, logger)
	chatService := services.NewChatService(repo, publisher, logger)
	uploadService := services.NewUploadService(blob, repo, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		MongoDBClient: mongoClient,
		RedisClient:   redisClient,
		Publisher:     publisher,
		AuthService:   authService,
		UserService:   userService,
		PlanService:   planService,
		ChatService:   chatService,
		UploadService: uploadService,
	}
}
