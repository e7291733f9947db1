package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeepulse/internal/dataset"
)

// testTable builds a three-year table spanning 1990-1992. Values maps
// country to its series; the table's year axis still covers the full
// dataset range, so only the first three columns are populated.
func testTable(t *testing.T, kind dataset.Kind, types map[string]string, values map[string][]float64) *dataset.Table {
	t.Helper()

	var rows []dataset.Row
	for country, series := range values {
		full := make([]float64, 30)
		for i := range full {
			full[i] = dataset.Missing
		}
		copy(full, series)
		rows = append(rows, dataset.Row{
			Country:    country,
			CoffeeType: types[country],
			Values:     full,
			Total:      dataset.SumValues(full),
		})
	}

	years := make([]int, 30)
	for i := range years {
		years[i] = 1990 + i
	}
	return dataset.NewTable(kind, years, rows)
}

func TestTopCountries_WithOthers(t *testing.T) {
	table := testTable(t, dataset.KindProduction, nil, map[string][]float64{
		"Brazil":   {100},
		"Viet Nam": {80},
		"Colombia": {60},
		"Honduras": {40},
		"Ethiopia": {20},
	})

	top := TopCountries(table, 1990, 3)
	require.Len(t, top, 4)

	assert.Equal(t, "Brazil", top[0].Country)
	assert.Equal(t, "Viet Nam", top[1].Country)
	assert.Equal(t, "Colombia", top[2].Country)
	assert.Equal(t, OthersLabel, top[3].Country)
	assert.Equal(t, 60.0, top[3].Value)
}

func TestTopCountries_PreservesYearSum(t *testing.T) {
	values := map[string][]float64{
		"Brazil":   {100},
		"Viet Nam": {80},
		"Colombia": {60},
		"Honduras": {40},
		"Ethiopia": {20},
		"Zeroed":   {0},
	}
	table := testTable(t, dataset.KindProduction, nil, values)

	var want float64
	for _, series := range values {
		if series[0] > 0 {
			want += series[0]
		}
	}

	// Folding the tail into Others never changes the year total.
	for _, n := range []int{1, 3, 10} {
		var got float64
		for _, cv := range TopCountries(table, 1990, n) {
			got += cv.Value
		}
		assert.Equal(t, want, got)
	}
}

func TestTopCountries_NoOthersWhenFewerThanN(t *testing.T) {
	table := testTable(t, dataset.KindProduction, nil, map[string][]float64{
		"Brazil":   {100},
		"Colombia": {60},
	})

	top := TopCountries(table, 1990, 10)
	require.Len(t, top, 2)
	for _, cv := range top {
		assert.NotEqual(t, OthersLabel, cv.Country)
	}
}

func TestTopCountries_ExcludesNonPositive(t *testing.T) {
	table := testTable(t, dataset.KindProduction, nil, map[string][]float64{
		"Brazil": {100},
		"Zeroed": {0},
		"Gone":   {dataset.Missing},
	})

	top := TopCountries(table, 1990, 10)
	require.Len(t, top, 1)
	assert.Equal(t, "Brazil", top[0].Country)
}

func TestAnnualTotals_SkipsMissing(t *testing.T) {
	table := testTable(t, dataset.KindExport, nil, map[string][]float64{
		"Brazil":   {100, dataset.Missing, 300},
		"Colombia": {50, 60, dataset.Missing},
	})

	totals := AnnualTotals(table)
	require.Len(t, totals, 30)

	assert.Equal(t, 150.0, totals[0].Value)
	assert.Equal(t, 60.0, totals[1].Value)
	assert.Equal(t, 300.0, totals[2].Value)
	// Years with no data at all sum to zero, not NaN.
	assert.Equal(t, 0.0, totals[5].Value)
	assert.False(t, math.IsNaN(totals[5].Value))
}

func TestAnnualTotals_MonotonicUnderRowAddition(t *testing.T) {
	base := map[string][]float64{
		"Brazil":   {100, 200, 300},
		"Colombia": {50, dataset.Missing, 70},
	}
	before := AnnualTotals(testTable(t, dataset.KindExport, nil, base))

	base["Viet Nam"] = []float64{10, 0, dataset.Missing}
	after := AnnualTotals(testTable(t, dataset.KindExport, nil, base))

	require.Len(t, after, len(before))
	for i := range before {
		assert.GreaterOrEqual(t, after[i].Value, before[i].Value)
	}
}

func TestCategoryTotals_Buckets(t *testing.T) {
	table := testTable(t, dataset.KindProduction,
		map[string]string{
			"Brazil":   "Arabica/Robusta",
			"Colombia": "Arabica",
			"Viet Nam": "Robusta",
			"Kenya":    "Arabica",
		},
		map[string][]float64{
			"Brazil":   {100},
			"Colombia": {60},
			"Viet Nam": {80},
			"Kenya":    {20},
		})

	buckets := CategoryTotals(table, 1990)
	assert.Equal(t, 80.0, buckets["Arabica"])
	assert.Equal(t, 80.0, buckets["Robusta"])
	assert.Equal(t, 100.0, buckets["Arabica/Robusta"])
}

func TestCategoryGrandTotals(t *testing.T) {
	table := testTable(t, dataset.KindProduction,
		map[string]string{"Brazil": "Arabica", "Viet Nam": "Robusta"},
		map[string][]float64{
			"Brazil":   {100, 100},
			"Viet Nam": {50, 50},
		})

	buckets := CategoryGrandTotals(table)
	assert.Equal(t, 200.0, buckets["Arabica"])
	assert.Equal(t, 100.0, buckets["Robusta"])
}

func TestRankAll(t *testing.T) {
	table := testTable(t, dataset.KindProduction,
		map[string]string{"Brazil": "Arabica", "Colombia": "Arabica"},
		map[string][]float64{
			"Brazil":   {300},
			"Colombia": {100},
			"Empty":    {0},
		})

	ranked := RankAll(table)
	require.Len(t, ranked, 2)

	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "Brazil", ranked[0].Country)
	assert.InDelta(t, 75.0, ranked[0].Share, 1e-9)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.InDelta(t, 25.0, ranked[1].Share, 1e-9)
}

func TestRankByYear(t *testing.T) {
	table := testTable(t, dataset.KindExport, nil,
		map[string][]float64{
			"Brazil":   {300, 50},
			"Colombia": {100, 150},
		})

	ranked := RankByYear(table, 1990)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Brazil", ranked[0].Country)
	assert.InDelta(t, 75.0, ranked[0].Share, 1e-9)

	// The next year reverses the order.
	ranked = RankByYear(table, 1991)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Colombia", ranked[0].Country)
	assert.Equal(t, 150.0, ranked[0].Total)
}

func TestGrowthRates(t *testing.T) {
	totals := []YearValue{
		{Year: 1990, Value: 100},
		{Year: 1991, Value: 110},
		{Year: 1992, Value: 99},
	}

	rates := GrowthRates(totals)
	require.Len(t, rates, 2)

	assert.Equal(t, 1991, rates[0].Year)
	assert.InDelta(t, 10.0, rates[0].Value, 1e-9)
	assert.InDelta(t, -10.0, rates[1].Value, 1e-9)
}

func TestGrowthRates_ZeroBase(t *testing.T) {
	rates := GrowthRates([]YearValue{
		{Year: 1990, Value: 0},
		{Year: 1991, Value: 50},
	})
	require.Len(t, rates, 1)
	assert.Equal(t, 0.0, rates[0].Value)
}

func TestGrowthRates_TooShort(t *testing.T) {
	assert.Nil(t, GrowthRates([]YearValue{{Year: 1990, Value: 1}}))
	assert.Nil(t, GrowthRates(nil))
}

func TestJoinByCountry(t *testing.T) {
	prod := testTable(t, dataset.KindProduction, nil, map[string][]float64{
		"Brazil":     {300},
		"Colombia":   {100},
		"Viet Nam":   {200},
		"OnlyInProd": {50},
	})
	cons := testTable(t, dataset.KindConsumption, nil, map[string][]float64{
		"Brazil":   {120},
		"Colombia": {30},
		"Viet Nam": {0}, // non-positive, dropped
	})

	joined := JoinByCountry(prod, cons, 1990, 30)
	require.Len(t, joined, 2)

	assert.Equal(t, "Brazil", joined[0].Country)
	assert.Equal(t, 300.0, joined[0].Left)
	assert.Equal(t, 120.0, joined[0].Right)
	assert.Equal(t, "Colombia", joined[1].Country)
}

func TestJoinByCountry_Limit(t *testing.T) {
	prod := testTable(t, dataset.KindProduction, nil, map[string][]float64{
		"A": {3}, "B": {2}, "C": {1},
	})
	cons := testTable(t, dataset.KindConsumption, nil, map[string][]float64{
		"A": {1}, "B": {1}, "C": {1},
	})

	joined := JoinByCountry(prod, cons, 1990, 2)
	require.Len(t, joined, 2)
	assert.Equal(t, "A", joined[0].Country)
	assert.Equal(t, "B", joined[1].Country)
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	assert.InDelta(t, 91.0, Percentile(values, 90), 1e-9)
	assert.Equal(t, 10.0, Percentile(values, 0))
	assert.Equal(t, 100.0, Percentile(values, 100))
	assert.Equal(t, 0.0, Percentile(nil, 90))
}

func TestFitTrend(t *testing.T) {
	// Perfect line: value = 2*year - 3500.
	var totals []YearValue
	for year := 1990; year <= 1999; year++ {
		totals = append(totals, YearValue{Year: year, Value: 2*float64(year) - 3500})
	}

	fit := FitTrend(totals)
	assert.InDelta(t, 2.0, fit.Slope, 1e-6)
	assert.InDelta(t, -3500.0, fit.Intercept, 1e-3)
	assert.InDelta(t, 2*2019-3500, fit.At(2019), 1e-3)

	line := fit.Line([]int{1990, 1991})
	require.Len(t, line, 2)
	assert.InDelta(t, 480.0, line[0].Value, 1e-6)
}

func TestFitTrend_Degenerate(t *testing.T) {
	assert.Equal(t, TrendFit{}, FitTrend(nil))

	fit := FitTrend([]YearValue{{Year: 1990, Value: 42}})
	assert.Equal(t, 42.0, fit.Intercept)
	assert.Equal(t, 0.0, fit.Slope)
}
