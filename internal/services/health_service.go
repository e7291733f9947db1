package services

import (
	"context"
	"log/slog"
	"time"

	"coffeepulse/internal/dataset"
	"coffeepulse/internal/infrastructure"
)

// HealthStatus is the liveness/readiness payload.
type HealthStatus struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Uptime   string         `json:"uptime"`
	Datasets map[string]int `json:"datasets"`
}

// HealthService reports process health and dataset readiness.
type HealthService struct {
	store   *dataset.Store
	logger  *slog.Logger
	started time.Time
}

// NewHealthService creates the health service.
func NewHealthService(store *dataset.Store, logger *slog.Logger) *HealthService {
	return &HealthService{
		store:   store,
		logger:  logger.With(slog.String("component", "health_service")),
		started: time.Now(),
	}
}

// Check returns the current health status. The service is ready when
// every dataset loaded at least one row.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	datasets := map[string]int{
		"production":  s.store.Production.Len(),
		"consumption": s.store.Consumption.Len(),
		"import":      s.store.Import.Len(),
		"export":      s.store.Export.Len(),
		"trade_flows": s.store.Flows.Len(),
	}

	status := "healthy"
	for name, n := range datasets {
		if n == 0 {
			status = "degraded"
			s.logger.WarnContext(ctx, "dataset empty", slog.String("dataset", name))
		}
	}

	return HealthStatus{
		Status:   status,
		Version:  infrastructure.ServiceVersion,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Datasets: datasets,
	}
}

// Version returns the build version string.
func (s *HealthService) Version() string {
	return infrastructure.ServiceVersion
}

// Ready reports whether the service can serve charts.
func (s *HealthService) Ready() bool {
	return s.store != nil &&
		s.store.Production.Len() > 0 &&
		s.store.Consumption.Len() > 0 &&
		s.store.Import.Len() > 0 &&
		s.store.Export.Len() > 0
}
