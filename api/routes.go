package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/podforge/podforge-api/api/generate"
	"github.com/podforge/podforge-api/api/health"
	"github.com/podforge/podforge-api/api/jobs"
	"github.com/podforge/podforge-api/api/types"
	"github.com/podforge/podforge-api/api/version"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil || deps.JobService == nil {
		return fmt.Errorf("job service dependency is required")
	}

	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	engine.NoRoute(NotFoundHandler())

	v1 := engine.Group("/api/v1")

	// Generation enqueue is the expensive path (2 req/s, burst of 5)
	generateGroup := v1.Group("/generate")
	generateGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 2, 5))
	generate.RegisterRoutes(generateGroup, deps)

	// Job status polling gets a looser limit (10 req/s, burst of 20)
	jobsGroup := v1.Group("/jobs")
	jobsGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	jobs.RegisterRoutes(jobsGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
