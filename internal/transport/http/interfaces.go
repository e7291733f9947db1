package http

import (
	"context"

	"coffeepulse/internal/analytics"
	"coffeepulse/internal/dataset"
	"coffeepulse/internal/services"
)

// DashboardServiceInterface is what the chart and data handlers need
// from the dashboard service.
type DashboardServiceInterface interface {
	Render(ctx context.Context, state services.State) (*services.TabView, error)
	Ranking(kind dataset.Kind, year int) ([]analytics.RankedCountry, error)
	Countries() services.CountryOptions
}

// ExportServiceInterface is what the export handler needs.
type ExportServiceInterface interface {
	Workbook(ctx context.Context) ([]byte, error)
	TrendPNG(ctx context.Context, kind dataset.Kind) ([]byte, error)
}

// HealthServiceInterface is what the health handler needs.
type HealthServiceInterface interface {
	Check(ctx context.Context) services.HealthStatus
	Ready() bool
	Version() string
}
