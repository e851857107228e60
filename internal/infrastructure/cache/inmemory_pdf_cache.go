// Package cache holds the PDF cache backends.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tn-gestion/backend/internal/domain/printing"
)

const defaultCleanupInterval = 5 * time.Minute

type entry struct {
	pdf       printing.CachedPDF
	expiresAt time.Time
}

// InMemoryPDFCache implements PDFCache with an in-memory map.
// This is suitable for single-instance deployments and testing
type InMemoryPDFCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryPDFCache creates a new in-memory cache and starts a background
// goroutine that evicts expired entries
func NewInMemoryPDFCache() *InMemoryPDFCache {
	return newInMemoryPDFCache(defaultCleanupInterval)
}

func newInMemoryPDFCache(cleanupInterval time.Duration) *InMemoryPDFCache {
	c := &InMemoryPDFCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval)

	return c
}

// Get returns the cached PDF for key, ignoring expired entries
func (c *InMemoryPDFCache) Get(ctx context.Context, key string) (printing.CachedPDF, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return printing.CachedPDF{}, false, nil
	}
	return e.pdf, true, nil
}

// Set stores pdf under key for ttl
func (c *InMemoryPDFCache) Set(ctx context.Context, key string, pdf printing.CachedPDF, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		pdf:       pdf,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Close stops the cleanup goroutine.
// Safe to call multiple times
func (c *InMemoryPDFCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryPDFCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryPDFCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries, expired ones included until the
// next cleanup
func (c *InMemoryPDFCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ printing.PDFCache = (*InMemoryPDFCache)(nil)
