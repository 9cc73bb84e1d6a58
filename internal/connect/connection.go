package connect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func MongoDBConnect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

func MongoDBDisconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}

// NewRedisClient returns a connected Redis client or nil when the address is
// unset or unreachable. Callers degrade gracefully: rate limiting is simply
// disabled without Redis.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

// BlobHandle is an initialize-once guard around the Cloudinary client. The
// first Get builds the client; every later call returns the memoized result.
// A failed initialization is a configuration error and is not retried.
type BlobHandle struct {
	cloudName string
	apiKey    string
	apiSecret string

	once sync.Once
	cld  *cloudinary.Cloudinary
	err  error
}

func NewBlobHandle(cloudName, apiKey, apiSecret string) *BlobHandle {
	return &BlobHandle{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

func (h *BlobHandle) Get() (*cloudinary.Cloudinary, error) {
	h.once.Do(func() {
		if h.cloudName == "" || h.apiKey == "" || h.apiSecret == "" {
			h.err = errors.New("cloudinary credentials are not configured")
			return
		}
		cld, err := cloudinary.NewFromParams(h.cloudName, h.apiKey, h.apiSecret)
		if err != nil {
			h.err = fmt.Errorf("failed to initialize Cloudinary: %w", err)
			return
		}
		h.cld = cld
	})
	return h.cld, h.err
}
