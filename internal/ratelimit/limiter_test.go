package ratelimit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsBurst(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMin: 60, Burst: 5})

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d within burst should pass", i)
	}
	assert.False(t, l.Allow("10.0.0.1"), "request beyond burst should be rejected")
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMin: 60, Burst: 1})

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// a different client gets its own bucket
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, 2, l.Size())
}

func TestLimiterConcurrentAccess(t *testing.T) {
	l := NewLimiter(DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.0.%d", n)
			for j := 0; j < 20; j++ {
				l.Allow(ip)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, l.Size())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 60, cfg.RequestsPerMin)
	assert.Equal(t, 20, cfg.Burst)
}
