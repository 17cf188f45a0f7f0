package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clusterscope/evidence-core/pkg/cache"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

type HealthHandler struct {
	cache  cache.DedupCache
	logger logger.Logger
}

func NewHealthHandler(dedupCache cache.DedupCache, log logger.Logger) *HealthHandler {
	return &HealthHandler{cache: dedupCache, logger: log}
}

// GET /health - liveness probe
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "evidence-core",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /ready - readiness probe
//
// The service stays ready on the in-memory cache fallback; the degraded
// dedup scope is reported so operators can see it.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	cacheStatus := "connected"
	if err := h.cache.HealthCheck(c.Request.Context()); err != nil {
		cacheStatus = err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"cache":  cacheStatus,
	})
}
