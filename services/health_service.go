package services

import (
	"context"
	"syntech_importer/database"
	"time"

	"github.com/MonkyMars/gecho"
)

type HealthService struct {
	logger *gecho.Logger
	db     *database.DB
	cache  *CacheService
}

func NewHealthService(logger *gecho.Logger, db *database.DB, cache *CacheService) *HealthService {
	return &HealthService{
		logger: logger,
		db:     db,
		cache:  cache,
	}
}

type HealthStatus struct {
	Status     string     `json:"status"` // healthy, degraded
	Database   string     `json:"database"`
	Cache      string     `json:"cache"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	RunActive  bool       `json:"run_active"`
	ReportedAt time.Time  `json:"reported_at"`
}

// Check probes the database and cache. A cache failure degrades the status
// but does not make the service unhealthy: imports fail open without it.
func (hs *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "healthy",
		Database:   "ok",
		Cache:      "ok",
		ReportedAt: time.Now(),
	}

	if err := hs.db.Health(); err != nil {
		hs.logger.Error("Database health check failed", gecho.Field("error", err))
		status.Database = "unreachable"
		status.Status = "degraded"
	}

	if err := hs.cache.Ping(ctx); err != nil {
		hs.logger.Warn("Cache health check failed", gecho.Field("error", err))
		status.Cache = "unreachable"
		status.Status = "degraded"
	} else {
		status.RunActive = hs.cache.IsRunActive(ctx)
		if summary, err := hs.cache.GetRunSummary(ctx); err == nil && summary != nil {
			status.LastRunAt = &summary.FinishedAt
		}
	}

	return status
}
