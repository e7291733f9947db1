package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeepulse/internal/analytics"
)

func TestTreemap(t *testing.T) {
	fig := Treemap([]analytics.CountryValue{
		{Country: "Brazil", Value: 100},
		{Country: "Colombia", Value: 60},
	}, "Production")

	require.Len(t, fig.Traces, 1)
	assert.Equal(t, "treemap", fig.Traces[0].Type)
	assert.Equal(t, []string{"Brazil", "Colombia"}, fig.Traces[0].Labels)
	assert.Equal(t, []float64{100, 60}, fig.Traces[0].Values)
	assert.False(t, fig.Empty)
}

func TestTreemap_Empty(t *testing.T) {
	fig := Treemap(nil, "Production")
	assert.True(t, fig.Empty)
	assert.Empty(t, fig.Traces)
	assert.NotEmpty(t, fig.Annotation)
	assert.Equal(t, "Production", fig.Layout.Title)
}

func TestDonut(t *testing.T) {
	fig := Donut([]analytics.CountryValue{
		{Country: "Brazil", Value: 100},
		{Country: analytics.OthersLabel, Value: 40},
	}, "Top producers")

	require.Len(t, fig.Traces, 1)
	assert.Equal(t, "pie", fig.Traces[0].Type)
	assert.Equal(t, 0.45, fig.Traces[0].Hole)
	assert.True(t, fig.Layout.ShowLegend)
}

func TestTrendLine(t *testing.T) {
	totals := []analytics.YearValue{
		{Year: 1990, Value: 10},
		{Year: 1991, Value: 20},
	}
	fit := analytics.FitTrend(totals)

	fig := TrendLine(totals, fit, "Exports over time", "Volume")
	require.Len(t, fig.Traces, 2)
	assert.Equal(t, "Annual total", fig.Traces[0].Name)
	assert.Equal(t, "Trend", fig.Traces[1].Name)
	assert.Equal(t, "dash", fig.Traces[1].Line.Dash)

	// Trend trace evaluates the fit at each year.
	assert.InDelta(t, 10.0, fig.Traces[1].Y[0], 1e-6)
	assert.InDelta(t, 20.0, fig.Traces[1].Y[1], 1e-6)
}

func TestCategoryBar_StableOrder(t *testing.T) {
	fig := CategoryBar(map[string]float64{
		"Arabica/Robusta": 3,
		"Robusta":         2,
		"Arabica":         1,
	}, "By type", "Volume")

	require.Len(t, fig.Traces, 1)
	assert.Equal(t, []string{"Arabica", "Robusta", "Arabica/Robusta"}, fig.Traces[0].Text)
	assert.Equal(t, []float64{1, 2, 3}, fig.Traces[0].Y)
}

func TestComboByYear_LogScale(t *testing.T) {
	joined := []analytics.JoinedCountry{
		{Country: "Brazil", Left: 300, Right: 120},
	}

	fig := ComboByYear(joined, "Production", "Consumption", "Prod vs cons", true)
	require.Len(t, fig.Traces, 2)
	assert.Equal(t, "group", fig.Layout.BarMode)
	assert.Equal(t, "log", fig.Layout.YAxisType)

	fig = ComboByYear(joined, "Production", "Consumption", "Prod vs cons", false)
	assert.Empty(t, fig.Layout.YAxisType)

	// Linear scale caps the axis at 110% of the 90th percentile.
	require.Len(t, fig.Layout.YAxisRange, 2)
	assert.Equal(t, 0.0, fig.Layout.YAxisRange[0])
	assert.Greater(t, fig.Layout.YAxisRange[1], 0.0)

	fig = ComboByYear(joined, "Production", "Consumption", "Prod vs cons", true)
	assert.Empty(t, fig.Layout.YAxisRange)
}

func TestComboByCountry(t *testing.T) {
	left := []analytics.YearValue{{Year: 1990, Value: 1}}
	right := []analytics.YearValue{{Year: 1990, Value: 2}}

	fig := ComboByCountry(left, right, "Production", "Consumption", "Brazil")
	require.Len(t, fig.Traces, 2)
	assert.Equal(t, "Production", fig.Traces[0].Name)

	fig = ComboByCountry(nil, nil, "Production", "Consumption", "Brazil")
	assert.True(t, fig.Empty)
}

func TestGrowthBar_SignColors(t *testing.T) {
	fig := GrowthBar([]analytics.YearValue{
		{Year: 1991, Value: 10},
		{Year: 1992, Value: -5},
	}, "Growth")

	require.Len(t, fig.Traces, 1)
	colors := fig.Traces[0].Marker.Colors
	require.Len(t, colors, 2)
	assert.NotEqual(t, colors[0], colors[1])
}

func TestSankey(t *testing.T) {
	sel := analytics.FlowSelection{
		Exporters: []string{"Brazil", "Colombia"},
		Importers: []string{"Germany"},
		Links: []analytics.FlowLink{
			{Exporter: "Brazil", Importer: "Germany", Volume: 10},
			{Exporter: "Colombia", Importer: "Germany", Volume: 5},
		},
	}

	fig := Sankey(sel, "Trade flows")
	require.Len(t, fig.Traces, 1)

	trace := fig.Traces[0]
	assert.Equal(t, "sankey", trace.Type)
	// Exporters first, importers appended after.
	assert.Equal(t, []string{"Brazil", "Colombia", "Germany"}, trace.Node.Labels)
	assert.Equal(t, []int{0, 1}, trace.Link.Sources)
	assert.Equal(t, []int{2, 2}, trace.Link.Targets)
	assert.Equal(t, []float64{10, 5}, trace.Link.Values)
}

func TestSankey_Empty(t *testing.T) {
	fig := Sankey(analytics.FlowSelection{}, "Trade flows")
	assert.True(t, fig.Empty)
	assert.Contains(t, fig.Annotation, "No trade flows")
}

func TestSankey_SameCountryBothSides(t *testing.T) {
	// A country can appear as exporter and importer; it gets two nodes.
	sel := analytics.FlowSelection{
		Exporters: []string{"Brazil"},
		Importers: []string{"Brazil"},
		Links: []analytics.FlowLink{
			{Exporter: "Brazil", Importer: "Brazil", Volume: 1},
		},
	}

	fig := Sankey(sel, "Trade flows")
	trace := fig.Traces[0]
	assert.Equal(t, []string{"Brazil", "Brazil"}, trace.Node.Labels)
	assert.Equal(t, []int{0}, trace.Link.Sources)
	assert.Equal(t, []int{1}, trace.Link.Targets)
}
