package charts

// Figure is a declarative chart description the frontend renders
// verbatim with Plotly. Builders never touch I/O; an empty selection
// yields a figure whose Annotation explains what was empty instead of
// an error.
type Figure struct {
	Traces     []Trace `json:"traces"`
	Layout     Layout  `json:"layout"`
	Empty      bool    `json:"empty"`
	Annotation string  `json:"annotation,omitempty"`
}

// Trace is one data series of a figure.
type Trace struct {
	Type        string    `json:"type"`
	Name        string    `json:"name,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	X           []float64 `json:"x,omitempty"`
	Y           []float64 `json:"y,omitempty"`
	Text        []string  `json:"text,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	Values      []float64 `json:"values,omitempty"`
	Parents     []string  `json:"parents,omitempty"`
	Hole        float64   `json:"hole,omitempty"`
	Orientation string    `json:"orientation,omitempty"`
	Marker      *Marker   `json:"marker,omitempty"`
	Line        *Line     `json:"line,omitempty"`
	Node        *Node     `json:"node,omitempty"`
	Link        *Link     `json:"link,omitempty"`
}

// Marker styles the points, bars, or sectors of a trace.
type Marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
	Size   float64  `json:"size,omitempty"`
}

// Line styles a line trace.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Node holds the Sankey node set: exporters first, importers after.
type Node struct {
	Labels []string `json:"labels"`
	Colors []string `json:"colors,omitempty"`
}

// Link holds the Sankey links as node index triples.
type Link struct {
	Sources []int     `json:"sources"`
	Targets []int     `json:"targets"`
	Values  []float64 `json:"values"`
}

// Layout carries the figure-level presentation settings.
type Layout struct {
	Title      string    `json:"title,omitempty"`
	XAxisTitle string    `json:"xaxis_title,omitempty"`
	YAxisTitle string    `json:"yaxis_title,omitempty"`
	XAxisType  string    `json:"xaxis_type,omitempty"`
	YAxisType  string    `json:"yaxis_type,omitempty"`
	YAxisRange []float64 `json:"yaxis_range,omitempty"`
	BarMode    string    `json:"barmode,omitempty"`
	PaperColor string    `json:"paper_color,omitempty"`
	PlotColor  string    `json:"plot_color,omitempty"`
	FontColor  string    `json:"font_color,omitempty"`
	ShowLegend bool      `json:"show_legend"`
}

// emptyFigure builds the placeholder shown when a selection has no
// data. It is a valid, renderable figure, not an error.
func emptyFigure(title, message string) Figure {
	return Figure{
		Layout:     baseLayout(title),
		Empty:      true,
		Annotation: message,
	}
}
