package analytics

import (
	"sort"

	"coffeepulse/internal/dataset"
)

// OthersLabel is the bucket name for countries beyond the top-N cut.
const OthersLabel = "Others"

// CountryValue pairs a country with an aggregated value.
type CountryValue struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// RankedCountry is one row of a ranking table.
type RankedCountry struct {
	Rank       int     `json:"rank"`
	Country    string  `json:"country"`
	CoffeeType string  `json:"coffee_type,omitempty"`
	Total      float64 `json:"total"`
	Share      float64 `json:"share_pct"`
}

// YearValue pairs a dataset year with an aggregated value.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// YearCountryValues returns each country's measurement for one year,
// keeping only strictly positive values, sorted descending.
func YearCountryValues(t *dataset.Table, year int) []CountryValue {
	var out []CountryValue
	for _, row := range t.Rows() {
		v := t.Value(row.Country, year)
		if dataset.IsMissing(v) || v <= 0 {
			continue
		}
		out = append(out, CountryValue{Country: row.Country, Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}

// TopCountries returns the n largest countries for a year with the
// remainder folded into an "Others" bucket. The bucket only appears
// when something was actually folded.
func TopCountries(t *dataset.Table, year, n int) []CountryValue {
	all := YearCountryValues(t, year)
	if n <= 0 || len(all) <= n {
		return all
	}

	top := make([]CountryValue, n, n+1)
	copy(top, all[:n])

	others := 0.0
	for _, cv := range all[n:] {
		others += cv.Value
	}
	if others > 0 {
		top = append(top, CountryValue{Country: OthersLabel, Value: others})
	}
	return top
}

// AnnualTotals sums each year across all countries, skipping missing
// measurements. Every dataset year appears in the result.
func AnnualTotals(t *dataset.Table) []YearValue {
	years := t.Years()
	out := make([]YearValue, len(years))
	for i, year := range years {
		sum := 0.0
		for _, country := range t.Countries() {
			v := t.Value(country, year)
			if !dataset.IsMissing(v) {
				sum += v
			}
		}
		out[i] = YearValue{Year: year, Value: sum}
	}
	return out
}

// CategoryTotals buckets one year's measurements by coffee type.
// Countries growing both varieties land in the combined bucket.
func CategoryTotals(t *dataset.Table, year int) map[string]float64 {
	out := make(map[string]float64)
	for _, row := range t.Rows() {
		v := t.Value(row.Country, year)
		if dataset.IsMissing(v) || v <= 0 {
			continue
		}
		out[normalizeCoffeeType(row.CoffeeType)] += v
	}
	return out
}

// CategoryGrandTotals buckets the all-years totals by coffee type.
func CategoryGrandTotals(t *dataset.Table) map[string]float64 {
	out := make(map[string]float64)
	for _, row := range t.Rows() {
		if dataset.IsMissing(row.Total) || row.Total <= 0 {
			continue
		}
		out[normalizeCoffeeType(row.CoffeeType)] += row.Total
	}
	return out
}

// normalizeCoffeeType collapses the type labels into the three
// dashboard buckets.
func normalizeCoffeeType(label string) string {
	switch label {
	case "Arabica", "(A)", "Arabica (A)":
		return "Arabica"
	case "Robusta", "(R)", "Robusta (R)":
		return "Robusta"
	case "":
		return "Unknown"
	default:
		return "Arabica/Robusta"
	}
}

// RankAll ranks every country by its all-years total, descending.
// Share is each country's percentage of the grand total.
func RankAll(t *dataset.Table) []RankedCountry {
	rows := t.Rows()

	grand := 0.0
	for _, row := range rows {
		if !dataset.IsMissing(row.Total) && row.Total > 0 {
			grand += row.Total
		}
	}

	var ranked []RankedCountry
	for _, row := range rows {
		if dataset.IsMissing(row.Total) || row.Total <= 0 {
			continue
		}
		share := 0.0
		if grand > 0 {
			share = row.Total / grand * 100
		}
		ranked = append(ranked, RankedCountry{
			Country:    row.Country,
			CoffeeType: row.CoffeeType,
			Total:      row.Total,
			Share:      share,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// RankByYear ranks every country by its value in one year, descending.
// This backs the per-tab countries table, which always tracks the
// selected year.
func RankByYear(t *dataset.Table, year int) []RankedCountry {
	grand := 0.0
	for _, row := range t.Rows() {
		v := t.Value(row.Country, year)
		if !dataset.IsMissing(v) && v > 0 {
			grand += v
		}
	}

	var ranked []RankedCountry
	for _, row := range t.Rows() {
		v := t.Value(row.Country, year)
		if dataset.IsMissing(v) || v <= 0 {
			continue
		}
		share := 0.0
		if grand > 0 {
			share = v / grand * 100
		}
		ranked = append(ranked, RankedCountry{
			Country:    row.Country,
			CoffeeType: row.CoffeeType,
			Total:      v,
			Share:      share,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// GrowthRates computes year-over-year percentage change of the annual
// totals. The first year has no predecessor and is omitted. A zero
// base year yields a zero rate rather than a division blowup.
func GrowthRates(totals []YearValue) []YearValue {
	if len(totals) < 2 {
		return nil
	}
	out := make([]YearValue, 0, len(totals)-1)
	for i := 1; i < len(totals); i++ {
		prev := totals[i-1].Value
		rate := 0.0
		if prev != 0 {
			rate = (totals[i].Value - prev) / prev * 100
		}
		out = append(out, YearValue{Year: totals[i].Year, Value: rate})
	}
	return out
}

// JoinedCountry pairs a country's values in two tables.
type JoinedCountry struct {
	Country string  `json:"country"`
	Left    float64 `json:"left"`
	Right   float64 `json:"right"`
}

// JoinByCountry joins two tables on country for one year, keeping only
// countries present in both with strictly positive values on each
// side. Results sort by the left value descending; limit truncates
// when positive.
func JoinByCountry(left, right *dataset.Table, year, limit int) []JoinedCountry {
	var out []JoinedCountry
	for _, country := range left.Countries() {
		if !right.HasCountry(country) {
			continue
		}
		lv := left.Value(country, year)
		rv := right.Value(country, year)
		if dataset.IsMissing(lv) || dataset.IsMissing(rv) || lv <= 0 || rv <= 0 {
			continue
		}
		out = append(out, JoinedCountry{Country: country, Left: lv, Right: rv})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Left > out[j].Left
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. An empty input yields zero.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
