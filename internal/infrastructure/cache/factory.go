package cache

import (
	"fmt"

	"github.com/tn-gestion/backend/internal/domain/printing"
	"github.com/tn-gestion/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// PDFCacheFactory creates PDF caches based on configuration
type PDFCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// PDFCacheFactoryOption is a functional option for configuring the factory
type PDFCacheFactoryOption func(*PDFCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PDFCacheFactoryOption {
	return func(f *PDFCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true
func WithInMemoryFallback(allow bool) PDFCacheFactoryOption {
	return func(f *PDFCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPDFCacheFactory creates a new factory
func NewPDFCacheFactory(cfg config.RedisConfig, opts ...PDFCacheFactoryOption) *PDFCacheFactory {
	f := &PDFCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns the Redis cache when Redis is enabled and reachable,
// otherwise the in-memory cache
func (f *PDFCacheFactory) CreateCache() (printing.PDFCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory PDF cache")
		return NewInMemoryPDFCache(), nil
	}

	c, err := NewRedisPDFCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis PDF cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for PDF cache but unavailable: %w", err)
	}

	// each instance then renders its own copy
	f.logger.Warn("Redis unavailable, falling back to in-memory PDF cache", zap.Error(err))
	return NewInMemoryPDFCache(), nil
}
