package dataset

import (
	"math"
	"sort"

	"coffeepulse/internal/config"
)

// Kind identifies one of the wide-format trade tables.
type Kind string

const (
	KindProduction  Kind = "production"
	KindConsumption Kind = "consumption"
	KindImport      Kind = "import"
	KindExport      Kind = "export"
)

// Missing is the in-memory marker for an absent measurement.
// Aggregations must treat it as "no data", never as zero.
var Missing = math.NaN()

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Row holds one country's series across all dataset years.
type Row struct {
	Country    string
	CoffeeType string // empty for import/export tables
	Values     []float64
	Total      float64
}

// Table is an immutable wide-format dataset: one row per country,
// one value column per year plus a precomputed total.
type Table struct {
	kind  Kind
	years []int
	rows  []Row
	index map[string]int
}

// NewTable builds a table from parsed rows. Row order is preserved;
// the country index is built once and the table never mutates after.
func NewTable(kind Kind, years []int, rows []Row) *Table {
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		index[row.Country] = i
	}
	return &Table{
		kind:  kind,
		years: years,
		rows:  rows,
		index: index,
	}
}

// Kind returns the table kind.
func (t *Table) Kind() Kind {
	return t.kind
}

// Years returns the dataset years in ascending order.
func (t *Table) Years() []int {
	out := make([]int, len(t.years))
	copy(out, t.years)
	return out
}

// Len returns the number of countries in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Countries returns all country names in row order.
func (t *Table) Countries() []string {
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row.Country
	}
	return out
}

// SortedCountries returns all country names in lexical order.
func (t *Table) SortedCountries() []string {
	out := t.Countries()
	sort.Strings(out)
	return out
}

// HasCountry reports whether the table contains the given country.
func (t *Table) HasCountry(country string) bool {
	_, ok := t.index[country]
	return ok
}

// Row returns the row for a country, or false when absent.
func (t *Table) Row(country string) (Row, bool) {
	i, ok := t.index[country]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Rows returns a copy of the row slice.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Value returns the measurement for a country and year.
// Unknown countries and out-of-range years yield the missing marker.
func (t *Table) Value(country string, year int) float64 {
	i, ok := t.index[country]
	if !ok {
		return Missing
	}
	col := year - config.YearMin
	if col < 0 || col >= len(t.rows[i].Values) {
		return Missing
	}
	return t.rows[i].Values[col]
}

// ValueOrZero returns the measurement with missing mapped to zero.
func (t *Table) ValueOrZero(country string, year int) float64 {
	v := t.Value(country, year)
	if IsMissing(v) {
		return 0
	}
	return v
}

// Total returns the precomputed all-years total for a country.
func (t *Table) Total(country string) float64 {
	i, ok := t.index[country]
	if !ok {
		return Missing
	}
	return t.rows[i].Total
}

// CoffeeType returns the coffee type label for a country, if the
// table carries one.
func (t *Table) CoffeeType(country string) string {
	i, ok := t.index[country]
	if !ok {
		return ""
	}
	return t.rows[i].CoffeeType
}

// Flow is one synthetic trade flow record.
type Flow struct {
	Exporter string
	Importer string
	Year     int
	Volume   float64
}

// FlowTable is an immutable long-format table of trade flows.
type FlowTable struct {
	flows     []Flow
	exporters []string
	importers []string
}

// NewFlowTable builds a flow table and its distinct endpoint lists.
func NewFlowTable(flows []Flow) *FlowTable {
	seenExp := make(map[string]struct{})
	seenImp := make(map[string]struct{})
	var exporters, importers []string
	for _, f := range flows {
		if _, ok := seenExp[f.Exporter]; !ok {
			seenExp[f.Exporter] = struct{}{}
			exporters = append(exporters, f.Exporter)
		}
		if _, ok := seenImp[f.Importer]; !ok {
			seenImp[f.Importer] = struct{}{}
			importers = append(importers, f.Importer)
		}
	}
	sort.Strings(exporters)
	sort.Strings(importers)
	return &FlowTable{
		flows:     flows,
		exporters: exporters,
		importers: importers,
	}
}

// Len returns the number of flow records.
func (ft *FlowTable) Len() int {
	return len(ft.flows)
}

// Flows returns a copy of all flow records.
func (ft *FlowTable) Flows() []Flow {
	out := make([]Flow, len(ft.flows))
	copy(out, ft.flows)
	return out
}

// Exporters returns the distinct exporter names in lexical order.
func (ft *FlowTable) Exporters() []string {
	out := make([]string, len(ft.exporters))
	copy(out, ft.exporters)
	return out
}

// Importers returns the distinct importer names in lexical order.
func (ft *FlowTable) Importers() []string {
	out := make([]string, len(ft.importers))
	copy(out, ft.importers)
	return out
}

// Filter returns the flows matching the given criteria. A zero year
// or empty country matches everything.
func (ft *FlowTable) Filter(year int, exporter, importer string) []Flow {
	var out []Flow
	for _, f := range ft.flows {
		if year != 0 && f.Year != year {
			continue
		}
		if exporter != "" && f.Exporter != exporter {
			continue
		}
		if importer != "" && f.Importer != importer {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Store bundles the five immutable datasets loaded at startup.
type Store struct {
	Production  *Table
	Consumption *Table
	Import      *Table
	Export      *Table
	Flows       *FlowTable
}

// Tables returns the four wide-format tables keyed by kind.
func (s *Store) Tables() map[Kind]*Table {
	return map[Kind]*Table{
		KindProduction:  s.Production,
		KindConsumption: s.Consumption,
		KindImport:      s.Import,
		KindExport:      s.Export,
	}
}

// Table returns the wide-format table for a kind, or nil when unknown.
func (s *Store) Table(kind Kind) *Table {
	switch kind {
	case KindProduction:
		return s.Production
	case KindConsumption:
		return s.Consumption
	case KindImport:
		return s.Import
	case KindExport:
		return s.Export
	default:
		return nil
	}
}
