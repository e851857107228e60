package storage

import (
	"context"
	"fmt"

	infraconfig "github.com/tn-gestion/backend/internal/infrastructure/config"
	"github.com/tn-gestion/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Storage drivers
const (
	DriverLocal = "local"
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// NewPDFStorage builds the PDF storage selected by cfg.Driver. Remote
// drivers create their bucket on first use.
func NewPDFStorage(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (printing.PDFStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case "", DriverLocal:
		s, err := printing.NewFileSystemStorage(printing.FileSystemStorageConfig{
			BasePath: cfg.LocalDir,
			BaseURL:  cfg.PublicBaseURL,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverS3:
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case DriverMinIO:
		s, err := NewMinIOStorage(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
