package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount   int64
	ErrorCount     int64
	ScoresComputed int64
	CacheHits      int64
	CacheMisses    int64
	StartTime      time.Time

	// Response time tracking for percentiles
	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	// Status code tracking
	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	// External collaborator metrics
	ExternalAPIRequests   map[string]int64
	ExternalAPIErrorCount map[string]int64
	ExternalAPIMutex      sync.RWMutex

	// Rate limit metrics
	RateLimitBlocks int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:             time.Now(),
		ResponseTimes:         make([]time.Duration, 0, 1000),
		RequestCountByStatus:  make(map[int]int64),
		ExternalAPIRequests:   make(map[string]int64),
		ExternalAPIErrorCount: make(map[string]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementScore increments the scored-samples count
func (m *Metrics) IncrementScore() {
	atomic.AddInt64(&m.ScoresComputed, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementRateLimitBlock increments the rate-limited request count
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// RecordResponseTime records a response time, keeping a bounded window.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.ResponseTimesMutex.Lock()
	defer m.ResponseTimesMutex.Unlock()

	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[len(m.ResponseTimes)-1000:]
	}
}

// RecordRequestByStatus tracks request counts per status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// RecordExternalAPIRequest tracks external collaborator calls
func (m *Metrics) RecordExternalAPIRequest(apiName string, success bool) {
	m.ExternalAPIMutex.Lock()
	defer m.ExternalAPIMutex.Unlock()

	m.ExternalAPIRequests[apiName]++
	if !success {
		m.ExternalAPIErrorCount[apiName]++
	}
}

// GetPercentileResponseTime computes a response-time percentile over the
// recorded window.
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), m.ResponseTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)-1) * percentile / 100.0)
	return sorted[idx]
}

// GetStats returns a snapshot of all metrics
func (m *Metrics) GetStats() map[string]interface{} {
	m.StatusMutex.RLock()
	statusCodes := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		statusCodes[code] = count
	}
	m.StatusMutex.RUnlock()

	m.ExternalAPIMutex.RLock()
	externalAPIs := make(map[string]interface{}, len(m.ExternalAPIRequests))
	for api, count := range m.ExternalAPIRequests {
		externalAPIs[api] = map[string]int64{
			"requests": count,
			"errors":   m.ExternalAPIErrorCount[api],
		}
	}
	m.ExternalAPIMutex.RUnlock()

	return map[string]interface{}{
		"request_count":     atomic.LoadInt64(&m.RequestCount),
		"error_count":       atomic.LoadInt64(&m.ErrorCount),
		"scores_computed":   atomic.LoadInt64(&m.ScoresComputed),
		"cache_hits":        atomic.LoadInt64(&m.CacheHits),
		"cache_misses":      atomic.LoadInt64(&m.CacheMisses),
		"rate_limit_blocks": atomic.LoadInt64(&m.RateLimitBlocks),
		"uptime_seconds":    time.Since(m.StartTime).Seconds(),
		"status_codes":      statusCodes,
		"external_apis":     externalAPIs,
		"response_time_p50": m.GetPercentileResponseTime(50).Milliseconds(),
		"response_time_p95": m.GetPercentileResponseTime(95).Milliseconds(),
		"response_time_p99": m.GetPercentileResponseTime(99).Milliseconds(),
	}
}
