package health

import (
	"context"
	"errors"
	"time"

	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

var errNoHealthStatus = errors.New("no health status recorded yet")

// Check probes one dependency. A failing optional check degrades the
// system instead of marking it unhealthy.
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Optional bool
}

// StatusCache holds the last periodic result for cheap reads.
type StatusCache interface {
	CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error
	GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error)
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	checks     []Check
	cache      StatusCache
	healthRepo models.SystemHealthRepository
	logger     *logrus.Logger
	timeout    time.Duration
	startTime  time.Time
}

func NewHealthChecker(checks []Check, cache StatusCache, healthRepo models.SystemHealthRepository, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		checks:     checks,
		cache:      cache,
		healthRepo: healthRepo,
		logger:     logger,
		timeout:    10 * time.Second,
		startTime:  time.Now(),
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

func (h *HealthChecker) run(ctx context.Context, check Check) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := check.Ping(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = StatusUnhealthy
		if check.Optional {
			status = StatusDegraded
		}
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", check.Name).Error("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(check.Name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", check.Name).Warn("Failed to record service health")
		}
	}

	return ServiceHealth{
		Name:         check.Name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, 0, len(h.checks))
	for _, check := range h.checks {
		services = append(services, h.run(ctx, check))
	}

	return OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   time.Since(h.startTime).String(),
	}
}

// CheckCached returns the last periodic result, falling back to the
// latest rows recorded in the database when the cache has expired.
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	var cachedHealth []models.SystemHealth
	var err error
	if h.cache != nil {
		cachedHealth, err = h.cache.GetCachedSystemHealth(ctx)
	}
	if h.cache == nil || err != nil {
		if h.healthRepo == nil {
			return nil, errNoHealthStatus
		}
		cachedHealth, err = h.healthRepo.GetAllServicesHealth()
		if err != nil {
			return nil, err
		}
	}

	services := make([]ServiceHealth, len(cachedHealth))
	for i, health := range cachedHealth {
		services[i] = ServiceHealth{
			Name:         health.ServiceName,
			Status:       health.Status,
			ResponseTime: health.ResponseTimeMs,
			Error:        health.ErrorMessage,
			LastChecked:  health.CheckedAt.Format(time.RFC3339),
		}
	}

	return &OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   time.Since(h.startTime).String(),
	}, nil
}

func overallStatus(services []ServiceHealth) string {
	status := StatusHealthy
	for _, service := range services {
		if service.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if service.Status == StatusDegraded {
			status = StatusDegraded
		}
	}
	return status
}

// Refresh runs every check and stores the result in the status cache.
func (h *HealthChecker) Refresh(ctx context.Context, ttl time.Duration) OverallHealth {
	health := h.CheckAll(ctx)

	healthModels := make([]models.SystemHealth, len(health.Services))
	for i, service := range health.Services {
		checkedAt, _ := time.Parse(time.RFC3339, service.LastChecked)
		healthModels[i] = models.SystemHealth{
			ServiceName:    service.Name,
			Status:         service.Status,
			ResponseTimeMs: service.ResponseTime,
			ErrorMessage:   service.Error,
			CheckedAt:      checkedAt,
		}
	}

	if h.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := h.cache.CacheSystemHealth(cacheCtx, healthModels, ttl); err != nil {
			h.logger.WithError(err).Error("Failed to cache health status")
		}
	}

	h.logger.WithField("status", health.Status).Debug("Health check completed")
	return health
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx, 2*interval)
		}
	}
}
