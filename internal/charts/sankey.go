package charts

import (
	"coffeepulse/internal/analytics"
	"coffeepulse/internal/config"
)

// Sankey builds the trade flow diagram. Node order is exporters first
// then importers; link indices point into that combined list. An
// empty selection yields the annotated placeholder.
func Sankey(sel analytics.FlowSelection, title string) Figure {
	if len(sel.Links) == 0 {
		return emptyFigure(title, "No trade flows match the current selection")
	}

	labels := make([]string, 0, len(sel.Exporters)+len(sel.Importers))
	index := make(map[string]int, cap(labels))

	for _, e := range sel.Exporters {
		index["e:"+e] = len(labels)
		labels = append(labels, e)
	}
	for _, i := range sel.Importers {
		index["i:"+i] = len(labels)
		labels = append(labels, i)
	}

	colors := make([]string, len(labels))
	for i := range colors {
		if i < len(sel.Exporters) {
			colors[i] = config.CoffeePalette[1]
		} else {
			colors[i] = config.CoffeePalette[3]
		}
	}

	sources := make([]int, len(sel.Links))
	targets := make([]int, len(sel.Links))
	values := make([]float64, len(sel.Links))
	for i, link := range sel.Links {
		sources[i] = index["e:"+link.Exporter]
		targets[i] = index["i:"+link.Importer]
		values[i] = link.Volume
	}

	return Figure{
		Traces: []Trace{{
			Type: "sankey",
			Node: &Node{Labels: labels, Colors: colors},
			Link: &Link{Sources: sources, Targets: targets, Values: values},
		}},
		Layout: baseLayout(title),
	}
}
