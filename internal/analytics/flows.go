package analytics

import (
	"sort"

	"coffeepulse/internal/dataset"
)

// FlowLink is one aggregated exporter-to-importer volume.
type FlowLink struct {
	Exporter string  `json:"exporter"`
	Importer string  `json:"importer"`
	Volume   float64 `json:"volume"`
}

// FlowSelection is the aggregated flow network for one filter state.
type FlowSelection struct {
	Exporters []string   `json:"exporters"`
	Importers []string   `json:"importers"`
	Links     []FlowLink `json:"links"`
}

// AggregateFlows sums flow volumes per exporter/importer pair for the
// given filters. When neither endpoint is pinned the network is cut
// to the topN exporters and importers by total volume; pinning either
// side keeps every matching counterparty.
func AggregateFlows(ft *dataset.FlowTable, year int, exporter, importer string, topN int) FlowSelection {
	flows := ft.Filter(year, exporter, importer)
	if len(flows) == 0 {
		return FlowSelection{}
	}

	type pair struct{ exp, imp string }
	volumes := make(map[pair]float64)
	expTotals := make(map[string]float64)
	impTotals := make(map[string]float64)

	for _, f := range flows {
		volumes[pair{f.Exporter, f.Importer}] += f.Volume
		expTotals[f.Exporter] += f.Volume
		impTotals[f.Importer] += f.Volume
	}

	keepExp := topTotals(expTotals, 0)
	keepImp := topTotals(impTotals, 0)
	if exporter == "" && importer == "" && topN > 0 {
		keepExp = topTotals(expTotals, topN)
		keepImp = topTotals(impTotals, topN)
	}

	expSet := make(map[string]struct{}, len(keepExp))
	for _, e := range keepExp {
		expSet[e] = struct{}{}
	}
	impSet := make(map[string]struct{}, len(keepImp))
	for _, i := range keepImp {
		impSet[i] = struct{}{}
	}

	var links []FlowLink
	for p, v := range volumes {
		if _, ok := expSet[p.exp]; !ok {
			continue
		}
		if _, ok := impSet[p.imp]; !ok {
			continue
		}
		links = append(links, FlowLink{Exporter: p.exp, Importer: p.imp, Volume: v})
	}

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Volume != links[j].Volume {
			return links[i].Volume > links[j].Volume
		}
		if links[i].Exporter != links[j].Exporter {
			return links[i].Exporter < links[j].Exporter
		}
		return links[i].Importer < links[j].Importer
	})

	if len(links) == 0 {
		return FlowSelection{}
	}

	return FlowSelection{
		Exporters: keepExp,
		Importers: keepImp,
		Links:     links,
	}
}

// topTotals returns the keys ordered by total descending, cut to n
// when n is positive. Ties break lexically for stable output.
func topTotals(totals map[string]float64, n int) []string {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if totals[keys[i]] != totals[keys[j]] {
			return totals[keys[i]] > totals[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// FlowYears returns the distinct years present in the flow table,
// ascending.
func FlowYears(ft *dataset.FlowTable) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, f := range ft.Flows() {
		if _, ok := seen[f.Year]; !ok {
			seen[f.Year] = struct{}{}
			years = append(years, f.Year)
		}
	}
	sort.Ints(years)
	return years
}
