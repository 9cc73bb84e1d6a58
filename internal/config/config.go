package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	MongoDBURI  string
	MongoDBName string

	JWTSecret     string
	JWTExpiration time.Duration

	GoogleClientID string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	RedisAddr     string
	RedisPassword string

	AMQPURL string

	AllowedOrigin string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnvWithDefault("PORT", "8080"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		MongoDBURI:          os.Getenv("MONGODB_URI"),
		MongoDBName:         getEnvWithDefault("MONGODB_DATABASE", "goplan"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		AMQPURL:             os.Getenv("RABBITMQ_URL"),
		AllowedOrigin:       getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	exp := getEnvWithDefault("JWT_EXPIRATION", "168h")
	dur, err := time.ParseDuration(exp)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION %q: %w", exp, err)
	}
	cfg.JWTExpiration = dur

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
