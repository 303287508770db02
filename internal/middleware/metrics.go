package middleware

import (
	"context"
	"strings"
	"time"

	"miro-content-service/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Metrics returns a middleware that records per-endpoint counters
func Metrics(metrics *repository.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only track API endpoints
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		latency := float64(time.Since(start).Milliseconds())
		status := c.Writer.Status()

		// Handlers mark served-from-cache responses on the context.
		cacheHit := c.GetBool("cache_hit")

		ctx := context.Background()
		path := normalizePath(c.Request.URL.Path)

		if err := metrics.RecordAPICall(ctx, path, status, latency, cacheHit); err != nil {
			log.Warn().Err(err).Msg("Failed to record metrics")
		}
	}
}

// normalizePath groups per-entity paths under one counter. Numeric
// segments become :id; project ids are caller-assigned strings, so the
// segment after "projects" is collapsed too.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if isNumeric(part) {
			parts[i] = ":id"
			continue
		}
		if i > 0 && parts[i-1] == "projects" && part != "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// isNumeric checks if a string is purely numeric
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
