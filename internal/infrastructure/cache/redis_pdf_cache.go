package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tn-gestion/backend/internal/domain/printing"
)

// RedisPDFCache implements PDFCache using Redis, so that several API
// instances share rendered PDFs
type RedisPDFCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisPDFCache connects to Redis and checks the connection
func NewRedisPDFCache(cfg RedisConfig) (*RedisPDFCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPDFCacheWithClient(client, ""), nil
}

// NewRedisPDFCacheWithClient creates a cache with an existing Redis client
func NewRedisPDFCacheWithClient(client *redis.Client, keyPrefix string) *RedisPDFCache {
	if keyPrefix == "" {
		keyPrefix = "gestion:"
	}
	return &RedisPDFCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached PDF for key
func (c *RedisPDFCache) Get(ctx context.Context, key string) (printing.CachedPDF, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return printing.CachedPDF{}, false, nil
	}
	if err != nil {
		return printing.CachedPDF{}, false, fmt.Errorf("failed to read cached PDF: %w", err)
	}

	var pdf printing.CachedPDF
	if err := json.Unmarshal(raw, &pdf); err != nil {
		return printing.CachedPDF{}, false, fmt.Errorf("failed to decode cached PDF: %w", err)
	}
	return pdf, true, nil
}

// Set stores pdf under key as JSON with a TTL
func (c *RedisPDFCache) Set(ctx context.Context, key string, pdf printing.CachedPDF, ttl time.Duration) error {
	raw, err := json.Marshal(pdf)
	if err != nil {
		return fmt.Errorf("failed to encode cached PDF: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cached PDF: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisPDFCache) Close() error {
	return c.client.Close()
}

var _ printing.PDFCache = (*RedisPDFCache)(nil)
