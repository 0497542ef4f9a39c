package linkcheck

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetAndGet(t *testing.T) {
	cache := NewResultCache(10, time.Minute)

	res := Result{URL: "https://example.com", Status: StatusOK, StatusCode: 200}
	cache.Set("https://example.com", res)

	got, ok := cache.Get("https://example.com")
	require.True(t, ok)
	assert.Equal(t, res, got)
	assert.Equal(t, 1, cache.Len())

	_, ok = cache.Get("https://missing.example.com")
	assert.False(t, ok)
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewResultCache(10, 10*time.Millisecond)

	cache.Set("https://example.com", Result{Status: StatusOK})
	time.Sleep(20 * time.Millisecond)

	_, ok := cache.Get("https://example.com")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheLRUEviction(t *testing.T) {
	cache := NewResultCache(3, time.Minute)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("url-%d", i), Result{StatusCode: i})
	}

	// Touch url-0 so url-1 becomes the least recently used
	_, ok := cache.Get("url-0")
	require.True(t, ok)

	cache.Set("url-3", Result{StatusCode: 3})

	assert.Equal(t, 3, cache.Len())
	_, ok = cache.Get("url-1")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = cache.Get("url-0")
	assert.True(t, ok)
	_, ok = cache.Get("url-3")
	assert.True(t, ok)
}

func TestCacheUpdateExisting(t *testing.T) {
	cache := NewResultCache(10, time.Minute)

	cache.Set("url", Result{StatusCode: 200})
	cache.Set("url", Result{StatusCode: 404})

	got, ok := cache.Get("url")
	require.True(t, ok)
	assert.Equal(t, 404, got.StatusCode)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheClear(t *testing.T) {
	cache := NewResultCache(10, time.Minute)
	cache.Set("a", Result{})
	cache.Set("b", Result{})

	cache.Clear()
	assert.Equal(t, 0, cache.Len())

	// Cache remains usable after clearing
	cache.Set("c", Result{StatusCode: 200})
	got, ok := cache.Get("c")
	require.True(t, ok)
	assert.Equal(t, 200, got.StatusCode)
}
