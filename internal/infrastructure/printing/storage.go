package printing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/printing"
	"go.uber.org/zap"
)

// ErrCodeStorageFailed is the code of errors raised by PDF storage drivers
const ErrCodeStorageFailed = "STORAGE_FAILED"

// ErrPDFNotFound is returned, wrapped, when a key holds no PDF
var ErrPDFNotFound = errors.New("pdf not found")

// PDFStorage defines the interface for storing and retrieving PDF files
type PDFStorage interface {
	// Store saves a PDF under key and returns a URL to download it
	Store(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves a PDF by key
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes a PDF; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Exists reports whether a PDF is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStorageError creates a RenderError with the storage failure code
func NewStorageError(message string, cause error) *RenderError {
	return NewRenderError(ErrCodeStorageFailed, message, cause)
}

// StorageKey returns the object key of a rendered document:
// documents/{type}/{yyyy}/{number}-v{version}-{paper}.pdf
func StorageKey(doc *document.Document, paper printing.PaperSize) string {
	return fmt.Sprintf("documents/%s/%04d/%s-v%d-%s.pdf",
		strings.ToLower(string(doc.Type)),
		doc.IssueDate.Year(),
		sanitizeKeyPart(doc.Number),
		doc.Version,
		paper,
	)
}

func sanitizeKeyPart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for PDF storage
	BasePath string
	// BaseURL is the URL prefix the base directory is served under
	BaseURL string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage stores PDFs on the local file system
type FileSystemStorage struct {
	basePath string
	baseURL  string
	logger   *zap.Logger
}

// NewFileSystemStorage creates a new file system based PDF storage
func NewFileSystemStorage(config FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config.BasePath == "" {
		config.BasePath = "./data/pdf"
	}
	if config.BaseURL == "" {
		config.BaseURL = "/files"
	}
	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewStorageError("failed to create storage directory: "+config.BasePath, err)
	}
	absBase, err := filepath.Abs(config.BasePath)
	if err != nil {
		return nil, NewStorageError("failed to resolve base path", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		basePath: absBase,
		baseURL:  strings.TrimSuffix(config.BaseURL, "/"),
		logger:   logger,
	}, nil
}

// Store writes the PDF atomically: a temporary file is renamed over the
// final path once fully written.
func (s *FileSystemStorage) Store(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewStorageError("operation cancelled", err)
	}
	if len(data) == 0 {
		return "", NewStorageError("PDF data is empty", nil)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", NewStorageError("failed to create directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".pdf-*")
	if err != nil {
		return "", NewStorageError("failed to create temporary file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", NewStorageError("failed to write PDF file", err)
	}
	if err := tmp.Close(); err != nil {
		return "", NewStorageError("failed to write PDF file", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", NewStorageError("failed to move PDF file in place", err)
	}

	url := s.GetURL(key)
	s.logger.Debug("PDF stored",
		zap.String("path", fullPath),
		zap.Int("size", len(data)))
	return url, nil
}

// Get reads a PDF file by key
func (s *FileSystemStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError("operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewStorageError("PDF not found", ErrPDFNotFound)
		}
		return nil, NewStorageError("failed to read PDF file", err)
	}
	return data, nil
}

// Delete removes a PDF file
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError("operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return NewStorageError("failed to delete PDF file", err)
	}
	s.logger.Debug("PDF deleted", zap.String("key", key))
	return nil
}

// Exists reports whether a PDF file is stored under key
func (s *FileSystemStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, NewStorageError("operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, NewStorageError("failed to stat PDF file", err)
	}
	return !info.IsDir(), nil
}

// GetURL returns the accessible URL for a stored PDF
func (s *FileSystemStorage) GetURL(key string) string {
	return s.baseURL + "/" + filepath.ToSlash(filepath.Clean(key))
}

// resolve maps a key to a path under the base directory, rejecting
// absolute keys and any ".." component.
func (s *FileSystemStorage) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", NewStorageError("storage key is empty", nil)
	}
	cleanPath := filepath.Clean(key)
	if filepath.IsAbs(cleanPath) || strings.HasPrefix(key, "/") || containsDotDot(key) {
		s.logger.Warn("blocked potentially malicious path", zap.String("key", key))
		return "", NewStorageError("invalid path", nil)
	}

	fullPath := filepath.Join(s.basePath, cleanPath)
	if !strings.HasPrefix(fullPath, s.basePath+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("key", key),
			zap.String("path", fullPath))
		return "", NewStorageError("invalid path", nil)
	}
	return fullPath, nil
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

var _ PDFStorage = (*FileSystemStorage)(nil)
