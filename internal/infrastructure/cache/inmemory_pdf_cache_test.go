package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/printing"
)

var samplePDF = printing.CachedPDF{
	StorageKey: "documents/invoice/2026/FA-2026-0001-v1-A4.pdf",
	URL:        "/files/documents/invoice/2026/FA-2026-0001-v1-A4.pdf",
	PageCount:  2,
	SizeBytes:  48213,
}

func TestInMemoryPDFCache_GetSet(t *testing.T) {
	c := NewInMemoryPDFCache()
	defer c.Close()
	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "pdf:unknown:v1:A4")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "pdf:a:v1:A4", samplePDF, time.Hour))

		got, ok, err := c.Get(ctx, "pdf:a:v1:A4")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, samplePDF, got)
	})

	t.Run("versions are separate entries", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "pdf:a:v2:A4")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "pdf:b:v1:A5", samplePDF, 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		_, ok, err := c.Get(ctx, "pdf:b:v1:A5")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInMemoryPDFCache_Cleanup(t *testing.T) {
	c := newInMemoryPDFCache(10 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", samplePDF, time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", samplePDF, time.Hour))

	assert.Eventually(t, func() bool { return c.Size() == 1 }, time.Second, 5*time.Millisecond)
	_, ok, _ := c.Get(ctx, "long")
	assert.True(t, ok)
}

func TestInMemoryPDFCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryPDFCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestInMemoryPDFCache_Concurrent(t *testing.T) {
	c := NewInMemoryPDFCache()
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "shared", samplePDF, time.Hour)
			_, _, _ = c.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Size())
}
