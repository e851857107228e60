package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	infraconfig "github.com/tn-gestion/backend/internal/infrastructure/config"
	"github.com/tn-gestion/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

var _ printing.PDFStorage = (*MinIOStorage)(nil)

// MinIOStorage stores PDFs in a MinIO bucket. It is safe for concurrent
// use by multiple goroutines.
type MinIOStorage struct {
	client        *minio.Client
	bucket        string
	presignExpiry time.Duration
	logger        *zap.Logger
}

// NewMinIOStorage creates a MinIO client. The endpoint is host:port,
// without scheme; UseSSL selects https.
func NewMinIOStorage(cfg *infraconfig.StorageConfig, logger *zap.Logger) (*MinIOStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = defaultPresignExpiration
	}

	return &MinIOStorage{
		client:        cli,
		bucket:        cfg.Bucket,
		presignExpiry: expiry,
		logger:        logger,
	}, nil
}

// EnsureBucket creates the bucket when it is missing
func (m *MinIOStorage) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	m.logger.Info("Creating storage bucket", zap.String("bucket", m.bucket))
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Store uploads the PDF and returns a presigned download URL
func (m *MinIOStorage) Store(ctx context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", printing.NewStorageError("storage key is required", nil)
	}
	if len(data) == 0 {
		return "", printing.NewStorageError("PDF data is empty", nil)
	}

	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: pdfContentType,
	})
	if err != nil {
		return "", printing.NewStorageError("failed to upload object", err)
	}

	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.presignExpiry, url.Values{})
	if err != nil {
		return "", printing.NewStorageError("failed to generate download URL", err)
	}
	return u.String(), nil
}

// Get downloads a PDF
func (m *MinIOStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, printing.NewStorageError("storage key is required", nil)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.readError(err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.readError(err)
	}
	return data, nil
}

func (m *MinIOStorage) readError(err error) error {
	if isMinIONotFound(err) {
		return printing.NewStorageError("PDF not found", printing.ErrPDFNotFound)
	}
	return printing.NewStorageError("failed to download object", err)
}

// Delete removes an object by key
func (m *MinIOStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return printing.NewStorageError("storage key is required", nil)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return printing.NewStorageError("failed to delete object", err)
	}
	return nil
}

// Exists reports whether an object is stored under key
func (m *MinIOStorage) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, printing.NewStorageError("storage key is required", nil)
	}
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinIONotFound(err) {
			return false, nil
		}
		return false, printing.NewStorageError("failed to check object existence", err)
	}
	return true, nil
}

func isMinIONotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound" || strings.Contains(err.Error(), "does not exist")
}
