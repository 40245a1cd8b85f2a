package ratelimit

import (
	"github.com/gin-gonic/gin"

	"github.com/voxlab/speechmeter/internal/errors"
	"github.com/voxlab/speechmeter/internal/monitoring"
)

// Middleware rejects requests from IPs that exceed the configured rate.
func Middleware(limiter *Limiter, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			metrics.IncrementRateLimitBlock()
			appErr := errors.NewRateLimitError("60s")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}
		c.Next()
	}
}
