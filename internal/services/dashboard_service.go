package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"coffeepulse/internal/analytics"
	"coffeepulse/internal/charts"
	"coffeepulse/internal/config"
	"coffeepulse/internal/dataset"
	apierrors "coffeepulse/internal/errors"
	"coffeepulse/internal/infrastructure"
)

// topDonutCount is how many countries the donut shows before the
// remainder folds into Others.
const topDonutCount = 10

// compareCountryLimit caps the compare tab's grouped bar.
const compareCountryLimit = 30

// sankeyTopN is the endpoint cut applied to an unfiltered flow view.
const sankeyTopN = 15

// TabView is the rendered payload for one dashboard selection.
type TabView struct {
	Tab     string                   `json:"tab"`
	Year    int                      `json:"year"`
	Figures map[string]charts.Figure `json:"figures"`
	Ranking []analytics.RankedCountry `json:"ranking,omitempty"`
}

// DashboardService renders dashboard selections against the loaded
// datasets. It holds no mutable state beyond the immutable store, so
// renders are safe to run concurrently.
type DashboardService struct {
	store    *dataset.Store
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *infrastructure.BusinessMetrics
}

// NewDashboardService creates the dashboard render service.
func NewDashboardService(store *dataset.Store, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DashboardService {
	return &DashboardService{
		store:    store,
		logger:   logger.With(slog.String("component", "dashboard_service")),
		validate: newValidate(),
		metrics:  metrics,
	}
}

// Render produces the figures for one selection. It is the single
// entry point any UI layer calls; invalid states come back as
// validation errors, empty selections come back as annotated empty
// figures inside a normal TabView.
func (s *DashboardService) Render(ctx context.Context, state State) (*TabView, error) {
	if err := validateState(s.validate, state); err != nil {
		return nil, err
	}

	if state.Year == 0 {
		state.Year = config.YearMax
	}
	if state.TopN == 0 {
		state.TopN = topDonutCount
	}

	start := time.Now()

	var view *TabView
	switch state.Tab {
	case TabProduction:
		view = s.renderTable(state, s.store.Production, "Production", true)
	case TabConsumption:
		view = s.renderTable(state, s.store.Consumption, "Domestic consumption", true)
	case TabImport:
		view = s.renderTable(state, s.store.Import, "Imports", false)
	case TabExport:
		view = s.renderTable(state, s.store.Export, "Exports", false)
	case TabCompare:
		view = s.renderCompare(state)
	case TabTrade:
		view = s.renderTrade(state)
	default:
		return nil, apierrors.ErrTabNotFound
	}

	empty := true
	for _, fig := range view.Figures {
		if !fig.Empty {
			empty = false
			break
		}
	}
	infrastructure.RecordChartRender(ctx, s.metrics, state.Tab, time.Since(start), empty)

	s.logger.DebugContext(ctx, "selection rendered",
		slog.String("tab", state.Tab),
		slog.Int("year", state.Year),
		slog.Int("figures", len(view.Figures)),
		slog.Bool("empty", empty),
	)

	return view, nil
}

// renderTable builds the shared per-table tab: treemap, donut, trend
// with fitted overlay, growth bar, and the coffee type bar when the
// table carries type labels.
func (s *DashboardService) renderTable(state State, t *dataset.Table, label string, hasTypes bool) *TabView {
	yearValues := analytics.YearCountryValues(t, state.Year)
	top := analytics.TopCountries(t, state.Year, state.TopN)
	totals := analytics.AnnualTotals(t)
	fit := analytics.FitTrend(totals)
	rates := analytics.GrowthRates(totals)

	figures := map[string]charts.Figure{
		"treemap": charts.Treemap(yearValues,
			fmt.Sprintf("%s by country, %d", label, state.Year)),
		"donut": charts.Donut(top,
			fmt.Sprintf("Top %d countries, %d", state.TopN, state.Year)),
		"trend": charts.TrendLine(totals, fit,
			fmt.Sprintf("%s over time", label), "Volume (60kg bags)"),
		"growth": charts.GrowthBar(rates,
			fmt.Sprintf("%s growth year over year", label)),
	}

	if hasTypes {
		figures["categories"] = charts.CategoryBar(
			analytics.CategoryTotals(t, state.Year),
			fmt.Sprintf("%s by coffee type, %d", label, state.Year),
			"Volume (60kg bags)")
	}

	return &TabView{
		Tab:     state.Tab,
		Year:    state.Year,
		Figures: figures,
		Ranking: analytics.RankByYear(t, state.Year),
	}
}

// renderCompare builds the production-versus-consumption tab. With a
// country pinned it shows that country's two series over the years;
// otherwise the top producers for the selected year, optionally on a
// log scale.
func (s *DashboardService) renderCompare(state State) *TabView {
	figures := make(map[string]charts.Figure)

	if state.Country != "" {
		figures["combo"] = charts.ComboByCountry(
			s.countrySeries(s.store.Production, state.Country),
			s.countrySeries(s.store.Consumption, state.Country),
			"Production", "Consumption",
			fmt.Sprintf("Production vs consumption: %s", state.Country))
	} else {
		joined := analytics.JoinByCountry(s.store.Production, s.store.Consumption, state.Year, compareCountryLimit)
		figures["combo"] = charts.ComboByYear(joined, "Production", "Consumption",
			fmt.Sprintf("Production vs consumption, %d", state.Year), state.LogScale)
	}

	return &TabView{
		Tab:     state.Tab,
		Year:    state.Year,
		Figures: figures,
	}
}

// renderTrade builds the trade flow tab. Year zero would mean "all
// years", but the dashboard always renders a concrete year.
func (s *DashboardService) renderTrade(state State) *TabView {
	sel := analytics.AggregateFlows(s.store.Flows, state.Year, state.Exporter, state.Importer, sankeyTopN)

	return &TabView{
		Tab:  state.Tab,
		Year: state.Year,
		Figures: map[string]charts.Figure{
			"sankey": charts.Sankey(sel,
				fmt.Sprintf("Coffee trade flows, %d", state.Year)),
		},
	}
}

// countrySeries extracts one country's positive measurements across
// the years.
func (s *DashboardService) countrySeries(t *dataset.Table, country string) []analytics.YearValue {
	if !t.HasCountry(country) {
		return nil
	}
	var out []analytics.YearValue
	for _, year := range t.Years() {
		v := t.Value(country, year)
		if dataset.IsMissing(v) {
			continue
		}
		out = append(out, analytics.YearValue{Year: year, Value: v})
	}
	return out
}

// Ranking returns the ranking table for one dataset kind. A zero year
// ranks by all-years totals.
func (s *DashboardService) Ranking(kind dataset.Kind, year int) ([]analytics.RankedCountry, error) {
	t := s.store.Table(kind)
	if t == nil {
		return nil, apierrors.ErrTabNotFound
	}
	if year == 0 {
		return analytics.RankAll(t), nil
	}
	return analytics.RankByYear(t, year), nil
}

// CountryOptions lists the dropdown choices for the dashboard: the
// union of countries per table plus the flow endpoints.
type CountryOptions struct {
	Production  []string `json:"production"`
	Consumption []string `json:"consumption"`
	Import      []string `json:"import"`
	Export      []string `json:"export"`
	Exporters   []string `json:"exporters"`
	Importers   []string `json:"importers"`
	Years       []int    `json:"years"`
	FlowYears   []int    `json:"flow_years"`
}

// Countries returns every dropdown option set in one call.
func (s *DashboardService) Countries() CountryOptions {
	return CountryOptions{
		Production:  s.store.Production.SortedCountries(),
		Consumption: s.store.Consumption.SortedCountries(),
		Import:      s.store.Import.SortedCountries(),
		Export:      s.store.Export.SortedCountries(),
		Exporters:   s.store.Flows.Exporters(),
		Importers:   s.store.Flows.Importers(),
		Years:       config.Years(),
		FlowYears:   analytics.FlowYears(s.store.Flows),
	}
}
