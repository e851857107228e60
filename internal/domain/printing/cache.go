package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CachedPDF records where a rendered PDF lives
type CachedPDF struct {
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
	PageCount  int    `json:"page_count"`
	SizeBytes  int64  `json:"size_bytes"`
}

// PDFCache remembers rendered PDFs so that unchanged documents are not
// rendered twice. A miss returns ok=false with a nil error.
type PDFCache interface {
	Get(ctx context.Context, key string) (CachedPDF, bool, error)
	Set(ctx context.Context, key string, pdf CachedPDF, ttl time.Duration) error
	Close() error
}

// CacheKey builds the cache key of a document rendition. Any modification
// bumps the version, so stale entries are never hit.
func CacheKey(docID uuid.UUID, version int, paper PaperSize) string {
	return fmt.Sprintf("pdf:%s:v%d:%s", docID, version, paper)
}
