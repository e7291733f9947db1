package synth

import (
	"context"
	"log/slog"
	"sort"

	"coffeepulse/internal/dataset"
	"coffeepulse/internal/infrastructure"
)

// Generator builds a balanced synthetic trade flow set from the
// export and import tables. Total exports rarely equal total imports,
// so exporter totals are honored exactly and importer totals only
// proportionally.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a flow generator.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Generator{
		logger: logger.With(slog.String("component", "flow_generator")),
	}
}

// Generate produces flows for every year both tables cover. The
// result is deterministic: exporters and importers are processed in
// name order and each exporter's yearly flow sum equals its value in
// the export table.
func (g *Generator) Generate(ctx context.Context, exports, imports *dataset.Table) ([]dataset.Flow, error) {
	var flows []dataset.Flow

	for _, year := range exports.Years() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		yearly := g.generateYear(exports, imports, year)
		flows = append(flows, yearly...)

		g.logger.DebugContext(ctx, "year generated",
			slog.Int("year", year),
			slog.Int("flows", len(yearly)))
	}

	g.logger.InfoContext(ctx, "synthetic flows generated",
		slog.Int("total_flows", len(flows)))

	return flows, nil
}

// generateYear allocates each exporter's volume across importers in
// proportion to importer shares, then nudges allocations unit by unit
// until every exporter's sum matches its source value exactly.
func (g *Generator) generateYear(exports, imports *dataset.Table, year int) []dataset.Flow {
	exportVolumes := positiveVolumes(exports, year)
	importVolumes := positiveVolumes(imports, year)
	if len(exportVolumes) == 0 || len(importVolumes) == 0 {
		return nil
	}

	exporters := sortedKeys(exportVolumes)
	importers := sortedKeys(importVolumes)

	var totalImport int64
	for _, v := range importVolumes {
		totalImport += v
	}

	var flows []dataset.Flow
	for _, exporter := range exporters {
		allocation := allocate(exportVolumes[exporter], importers, importVolumes, totalImport)
		for _, importer := range importers {
			if allocation[importer] <= 0 {
				continue
			}
			flows = append(flows, dataset.Flow{
				Exporter: exporter,
				Importer: importer,
				Year:     year,
				Volume:   float64(allocation[importer]),
			})
		}
	}
	return flows
}

// allocate distributes one exporter's volume across the importers.
// The proportional pass truncates, so a second pass spreads the
// leftover one unit at a time, largest allocations first.
func allocate(exportVolume int64, importers []string, importVolumes map[string]int64, totalImport int64) map[string]int64 {
	allocation := make(map[string]int64, len(importers))

	var allocated int64
	for _, importer := range importers {
		amount := exportVolume * importVolumes[importer] / totalImport
		allocation[importer] = amount
		allocated += amount
	}

	adjustment := exportVolume - allocated
	if adjustment == 0 {
		return allocation
	}

	// Largest allocations absorb the correction first.
	ranked := append([]string(nil), importers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return allocation[ranked[i]] > allocation[ranked[j]]
	})

	for adjustment != 0 {
		moved := false
		for _, importer := range ranked {
			var change int64 = 1
			if adjustment < 0 {
				change = -1
			}
			if change < 0 && allocation[importer] == 0 {
				continue
			}
			allocation[importer] += change
			adjustment -= change
			moved = true
			if adjustment == 0 {
				break
			}
		}
		if !moved {
			// Nothing left to subtract from.
			break
		}
	}

	return allocation
}

// positiveVolumes collects the countries with a positive value for
// the year, as integers.
func positiveVolumes(t *dataset.Table, year int) map[string]int64 {
	out := make(map[string]int64)
	for _, country := range t.Countries() {
		v := t.Value(country, year)
		if dataset.IsMissing(v) || v <= 0 {
			continue
		}
		out[country] = int64(v)
	}
	return out
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Verify checks that every exporter's flow sum matches its value in
// the export table and returns the number of mismatches.
func (g *Generator) Verify(flows []dataset.Flow, exports *dataset.Table) int {
	sums := make(map[string]map[int]int64)
	for _, flow := range flows {
		if sums[flow.Exporter] == nil {
			sums[flow.Exporter] = make(map[int]int64)
		}
		sums[flow.Exporter][flow.Year] += int64(flow.Volume)
	}

	mismatches := 0
	for exporter, years := range sums {
		for year, sum := range years {
			want := exports.Value(exporter, year)
			if dataset.IsMissing(want) || want <= 0 {
				continue
			}
			if sum != int64(want) {
				mismatches++
				g.logger.Warn("export constraint not met",
					slog.String("exporter", exporter),
					slog.Int("year", year),
					slog.Int64("generated", sum),
					slog.Int64("expected", int64(want)))
			}
		}
	}
	return mismatches
}
