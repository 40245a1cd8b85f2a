// Package cache provides a TTL response cache for the scoring endpoints.
// Scoring is deterministic, so a response can be replayed for an identical
// request body until the calibration changes.
package cache

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voxlab/speechmeter/internal/monitoring"
)

// Item represents a cached response with expiration
type Item struct {
	Data        []byte
	ContentType string
	ExpiresAt   time.Time
}

// IsExpired checks if the cache item has expired
func (i *Item) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Cache provides thread-safe caching with TTL
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Item
	ttl   time.Duration
}

// New creates a new cache with the specified TTL
func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]*Item),
		ttl:   ttl,
	}
	go c.cleanup()
	return c
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for key, item := range c.items {
			if item.IsExpired() {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// Key builds a consistent cache key from the request method, path and body.
func Key(method, path string, body []byte) string {
	hash := md5.Sum(append([]byte(method+" "+path+" "), body...))
	return fmt.Sprintf("%x", hash)
}

// Get retrieves an unexpired item
func (c *Cache) Get(key string) (*Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || item.IsExpired() {
		return nil, false
	}
	return item, true
}

// Set stores a response body under key
func (c *Cache) Set(key string, data []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &Item{
		Data:        data,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(c.ttl),
	}
}

// Stats returns cache usage counters
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]interface{}{
		"items":       len(c.items),
		"ttl_seconds": c.ttl.Seconds(),
	}
}

// bodyCapturer tees the response body so a successful response can be
// stored after the handler runs.
type bodyCapturer struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapturer) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware replays cached responses for the scoring POST endpoints.
func (c *Cache) Middleware(metrics *monitoring.Metrics) gin.HandlerFunc {
	cacheable := map[string]bool{
		"/score":          true,
		"/score/features": true,
	}

	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodPost || !cacheable[ctx.Request.URL.Path] {
			ctx.Next()
			return
		}

		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.Next()
			return
		}
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

		key := Key(ctx.Request.Method, ctx.Request.URL.Path, body)
		if item, ok := c.Get(key); ok {
			metrics.IncrementCacheHit()
			ctx.Set("cache_hit", true)
			ctx.Data(http.StatusOK, item.ContentType, item.Data)
			ctx.Abort()
			return
		}
		metrics.IncrementCacheMiss()

		capturer := &bodyCapturer{ResponseWriter: ctx.Writer}
		ctx.Writer = capturer

		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK {
			c.Set(key, capturer.buf.Bytes(), ctx.Writer.Header().Get("Content-Type"))
		}
	}
}
