package charts

import (
	"fmt"
	"sort"

	"coffeepulse/internal/analytics"
	"coffeepulse/internal/config"
)

// baseLayout applies the shared coffee styling to every figure.
func baseLayout(title string) Layout {
	return Layout{
		Title:      title,
		PaperColor: config.ColorPaper,
		PlotColor:  config.ColorPaper,
		FontColor:  config.ColorInk,
	}
}

// paletteFor cycles the coffee palette across n entries.
func paletteFor(n int) []string {
	colors := make([]string, n)
	for i := 0; i < n; i++ {
		colors[i] = config.CoffeePalette[i%len(config.CoffeePalette)]
	}
	return colors
}

// Treemap builds a one-level treemap of per-country values for a year.
func Treemap(values []analytics.CountryValue, title string) Figure {
	if len(values) == 0 {
		return emptyFigure(title, "No data for the selected year")
	}

	labels := make([]string, len(values))
	vals := make([]float64, len(values))
	parents := make([]string, len(values))
	for i, cv := range values {
		labels[i] = cv.Country
		vals[i] = cv.Value
		parents[i] = ""
	}

	return Figure{
		Traces: []Trace{{
			Type:    "treemap",
			Labels:  labels,
			Values:  vals,
			Parents: parents,
			Marker:  &Marker{Colors: paletteFor(len(values))},
		}},
		Layout: baseLayout(title),
	}
}

// Donut builds a ring chart of the top countries plus an Others slice.
func Donut(values []analytics.CountryValue, title string) Figure {
	if len(values) == 0 {
		return emptyFigure(title, "No data for the selected year")
	}

	labels := make([]string, len(values))
	vals := make([]float64, len(values))
	for i, cv := range values {
		labels[i] = cv.Country
		vals[i] = cv.Value
	}

	layout := baseLayout(title)
	layout.ShowLegend = true

	return Figure{
		Traces: []Trace{{
			Type:   "pie",
			Labels: labels,
			Values: vals,
			Hole:   0.45,
			Marker: &Marker{Colors: paletteFor(len(values))},
		}},
		Layout: layout,
	}
}

// TrendLine builds the annual totals line with a least-squares trend
// overlay.
func TrendLine(totals []analytics.YearValue, fit analytics.TrendFit, title, yTitle string) Figure {
	if len(totals) == 0 {
		return emptyFigure(title, "No data available")
	}

	xs := make([]float64, len(totals))
	ys := make([]float64, len(totals))
	trend := make([]float64, len(totals))
	for i, tv := range totals {
		xs[i] = float64(tv.Year)
		ys[i] = tv.Value
		trend[i] = fit.At(tv.Year)
	}

	layout := baseLayout(title)
	layout.XAxisTitle = "Year"
	layout.YAxisTitle = yTitle
	layout.ShowLegend = true

	return Figure{
		Traces: []Trace{
			{
				Type: "scatter",
				Name: "Annual total",
				Mode: "lines+markers",
				X:    xs,
				Y:    ys,
				Line: &Line{Color: config.CoffeePalette[0], Width: 2},
			},
			{
				Type: "scatter",
				Name: "Trend",
				Mode: "lines",
				X:    xs,
				Y:    trend,
				Line: &Line{Color: config.CoffeePalette[3], Width: 2, Dash: "dash"},
			},
		},
		Layout: layout,
	}
}

// CategoryBar builds a bar chart of coffee type buckets. Buckets
// render in a fixed order so the chart is stable across renders.
func CategoryBar(buckets map[string]float64, title, yTitle string) Figure {
	if len(buckets) == 0 {
		return emptyFigure(title, "No data for the selected year")
	}

	order := []string{"Arabica", "Robusta", "Arabica/Robusta", "Unknown"}
	var labels []string
	var vals []float64
	for _, label := range order {
		if v, ok := buckets[label]; ok {
			labels = append(labels, label)
			vals = append(vals, v)
		}
	}
	// Anything outside the fixed buckets goes last, sorted.
	var extra []string
	for label := range buckets {
		known := false
		for _, o := range order {
			if label == o {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	for _, label := range extra {
		labels = append(labels, label)
		vals = append(vals, buckets[label])
	}

	layout := baseLayout(title)
	layout.YAxisTitle = yTitle

	xs := make([]float64, len(vals))
	for i := range xs {
		xs[i] = float64(i)
	}

	return Figure{
		Traces: []Trace{{
			Type:   "bar",
			X:      xs,
			Y:      vals,
			Text:   labels,
			Marker: &Marker{Colors: paletteFor(len(vals))},
		}},
		Layout: layout,
	}
}

// ComboByYear builds a grouped bar of two joined series per country
// for one year. logScale switches the value axis to log.
func ComboByYear(joined []analytics.JoinedCountry, leftName, rightName, title string, logScale bool) Figure {
	if len(joined) == 0 {
		return emptyFigure(title, "No countries with data on both sides")
	}

	countries := make([]string, len(joined))
	left := make([]float64, len(joined))
	right := make([]float64, len(joined))
	xs := make([]float64, len(joined))
	for i, jc := range joined {
		countries[i] = jc.Country
		left[i] = jc.Left
		right[i] = jc.Right
		xs[i] = float64(i)
	}

	layout := baseLayout(title)
	layout.BarMode = "group"
	layout.ShowLegend = true
	if logScale {
		layout.YAxisType = "log"
	} else {
		// Cap the axis near the 90th percentile so the long tail of
		// small producers stays readable.
		p90 := analytics.Percentile(append(append([]float64(nil), left...), right...), 90)
		if p90 > 0 {
			layout.YAxisRange = []float64{0, p90 * 1.1}
		}
	}

	return Figure{
		Traces: []Trace{
			{
				Type:   "bar",
				Name:   leftName,
				X:      xs,
				Y:      left,
				Text:   countries,
				Marker: &Marker{Color: config.CoffeePalette[1]},
			},
			{
				Type:   "bar",
				Name:   rightName,
				X:      xs,
				Y:      right,
				Text:   countries,
				Marker: &Marker{Color: config.CoffeePalette[3]},
			},
		},
		Layout: layout,
	}
}

// ComboByCountry builds two year series for one country, typically
// production against domestic consumption.
func ComboByCountry(left, right []analytics.YearValue, leftName, rightName, title string) Figure {
	if len(left) == 0 && len(right) == 0 {
		return emptyFigure(title, "No data for the selected country")
	}

	layout := baseLayout(title)
	layout.XAxisTitle = "Year"
	layout.ShowLegend = true

	var traces []Trace
	if len(left) > 0 {
		traces = append(traces, lineTrace(left, leftName, config.CoffeePalette[0]))
	}
	if len(right) > 0 {
		traces = append(traces, lineTrace(right, rightName, config.CoffeePalette[3]))
	}

	return Figure{Traces: traces, Layout: layout}
}

func lineTrace(series []analytics.YearValue, name, color string) Trace {
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, yv := range series {
		xs[i] = float64(yv.Year)
		ys[i] = yv.Value
	}
	return Trace{
		Type: "scatter",
		Name: name,
		Mode: "lines+markers",
		X:    xs,
		Y:    ys,
		Line: &Line{Color: color, Width: 2},
	}
}

// GrowthBar builds a year-over-year growth bar chart. Negative years
// render in the dark roast color, positive in the light one.
func GrowthBar(rates []analytics.YearValue, title string) Figure {
	if len(rates) == 0 {
		return emptyFigure(title, "Not enough years to compute growth")
	}

	xs := make([]float64, len(rates))
	ys := make([]float64, len(rates))
	colors := make([]string, len(rates))
	text := make([]string, len(rates))
	for i, yv := range rates {
		xs[i] = float64(yv.Year)
		ys[i] = yv.Value
		text[i] = fmt.Sprintf("%.1f%%", yv.Value)
		if yv.Value < 0 {
			colors[i] = config.CoffeePalette[0]
		} else {
			colors[i] = config.CoffeePalette[3]
		}
	}

	layout := baseLayout(title)
	layout.XAxisTitle = "Year"
	layout.YAxisTitle = "Growth (%)"

	return Figure{
		Traces: []Trace{{
			Type:   "bar",
			X:      xs,
			Y:      ys,
			Text:   text,
			Marker: &Marker{Colors: colors},
		}},
		Layout: layout,
	}
}
