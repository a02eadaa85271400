package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/health"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/insights"
	"github.com/ns-adiraghavan/adas-compassiq/backend/pkg/utils"
)

// CacheStats reports keyspace statistics of the shared cache.
type CacheStats interface {
	GetCacheStats(ctx context.Context) (map[string]string, error)
}

type HealthHandler struct {
	checker *health.HealthChecker
	cache   *insights.Cache
	stats   CacheStats
}

func NewHealthHandler(checker *health.HealthChecker, cache *insights.Cache, stats CacheStats) *HealthHandler {
	return &HealthHandler{checker: checker, cache: cache, stats: stats}
}

type healthBody struct {
	health.OverallHealth
	InsightsCached   int               `json:"insights_cached"`
	InsightsCapacity int               `json:"insights_capacity"`
	SharedCache      map[string]string `json:"shared_cache,omitempty"`
}

// HandleHealth runs every check now
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	overall := h.checker.CheckAll(c.Request.Context())
	body := h.body(overall)
	if h.stats != nil {
		stats, err := h.stats.GetCacheStats(c.Request.Context())
		if err == nil {
			body.SharedCache = stats
		}
	}
	c.JSON(statusCode(overall.Status), body)
}

// HandleCachedHealth serves the last periodic result
func (h *HealthHandler) HandleCachedHealth(c *gin.Context) {
	overall, err := h.checker.CheckCached(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "No cached health status", err)
		return
	}
	c.JSON(statusCode(overall.Status), h.body(*overall))
}

func (h *HealthHandler) body(overall health.OverallHealth) healthBody {
	body := healthBody{OverallHealth: overall}
	if h.cache != nil {
		body.InsightsCached = h.cache.Len()
		body.InsightsCapacity = h.cache.Capacity()
	}
	return body
}

func statusCode(status string) int {
	if status == health.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
