package synth

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeepulse/internal/config"
	"coffeepulse/internal/dataset"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// buildTable creates a table with values for a single year.
func buildTable(t *testing.T, kind dataset.Kind, year int, volumes map[string]float64) *dataset.Table {
	t.Helper()

	var rows []dataset.Row
	for country, volume := range volumes {
		values := make([]float64, config.YearMax-config.YearMin+1)
		for i := range values {
			values[i] = dataset.Missing
		}
		values[year-config.YearMin] = volume
		rows = append(rows, dataset.Row{
			Country: country,
			Values:  values,
			Total:   volume,
		})
	}
	return dataset.NewTable(kind, config.Years(), rows)
}

func TestGenerateMatchesExporterTotals(t *testing.T) {
	exports := buildTable(t, dataset.KindExport, 1995, map[string]float64{
		"Brazil":   1000,
		"Viet Nam": 333,
	})
	imports := buildTable(t, dataset.KindImport, 1995, map[string]float64{
		"Germany": 700,
		"Japan":   300,
		"France":  123,
	})

	gen := NewGenerator(testLogger())
	flows, err := gen.Generate(context.Background(), exports, imports)
	require.NoError(t, err)
	require.NotEmpty(t, flows)

	sums := map[string]int64{}
	for _, flow := range flows {
		assert.Equal(t, 1995, flow.Year)
		assert.Greater(t, flow.Volume, 0.0)
		sums[flow.Exporter] += int64(flow.Volume)
	}

	assert.Equal(t, int64(1000), sums["Brazil"])
	assert.Equal(t, int64(333), sums["Viet Nam"])

	assert.Zero(t, gen.Verify(flows, exports))
}

func TestGenerateIsDeterministic(t *testing.T) {
	exports := buildTable(t, dataset.KindExport, 2000, map[string]float64{
		"Brazil": 997, "Colombia": 500, "Ethiopia": 73,
	})
	imports := buildTable(t, dataset.KindImport, 2000, map[string]float64{
		"Germany": 800, "Japan": 400, "Italy": 250, "Sweden": 10,
	})

	gen := NewGenerator(testLogger())
	first, err := gen.Generate(context.Background(), exports, imports)
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), exports, imports)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateSkipsYearsWithoutData(t *testing.T) {
	exports := buildTable(t, dataset.KindExport, 1990, map[string]float64{"Brazil": 100})
	imports := buildTable(t, dataset.KindImport, 2019, map[string]float64{"Germany": 100})

	gen := NewGenerator(testLogger())
	flows, err := gen.Generate(context.Background(), exports, imports)
	require.NoError(t, err)

	// No overlapping year means no flows at all.
	assert.Empty(t, flows)
}

func TestGenerateIgnoresNonPositiveVolumes(t *testing.T) {
	exports := buildTable(t, dataset.KindExport, 2010, map[string]float64{
		"Brazil": 100, "Ghost": 0,
	})
	imports := buildTable(t, dataset.KindImport, 2010, map[string]float64{
		"Germany": 100,
	})

	gen := NewGenerator(testLogger())
	flows, err := gen.Generate(context.Background(), exports, imports)
	require.NoError(t, err)

	for _, flow := range flows {
		assert.NotEqual(t, "Ghost", flow.Exporter)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.csv")
	flows := []dataset.Flow{
		{Exporter: "Brazil", Importer: "Germany", Year: 1990, Volume: 42},
		{Exporter: "Brazil", Importer: "Japan", Year: 1991, Volume: 7},
	}

	require.NoError(t, WriteCSV(path, flows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Exporter", "Importer", "Year", "Volume"}, records[0])
	assert.Equal(t, []string{"Brazil", "Germany", "1990", "42"}, records[1])
}
