package analytics

import (
	"gonum.org/v1/gonum/stat"
)

// TrendFit is a least-squares line fitted over annual totals.
type TrendFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// FitTrend fits a degree-one least-squares line through the year
// totals. At least two points are required; with fewer the fit
// degenerates to a flat line through the single value.
func FitTrend(totals []YearValue) TrendFit {
	if len(totals) == 0 {
		return TrendFit{}
	}
	if len(totals) == 1 {
		return TrendFit{Intercept: totals[0].Value}
	}

	xs := make([]float64, len(totals))
	ys := make([]float64, len(totals))
	for i, tv := range totals {
		xs[i] = float64(tv.Year)
		ys[i] = tv.Value
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return TrendFit{Slope: slope, Intercept: intercept}
}

// At evaluates the fitted line for a year.
func (f TrendFit) At(year int) float64 {
	return f.Slope*float64(year) + f.Intercept
}

// Line evaluates the fitted line over the given years.
func (f TrendFit) Line(years []int) []YearValue {
	out := make([]YearValue, len(years))
	for i, year := range years {
		out[i] = YearValue{Year: year, Value: f.At(year)}
	}
	return out
}
