package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"coffeepulse/internal/config"
	"coffeepulse/internal/infrastructure"
)

// Loader reads the CSV datasets into immutable tables.
type Loader struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewLoader creates a dataset loader. metrics may be nil.
func NewLoader(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Loader {
	return &Loader{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "dataset_loader")),
		metrics: metrics,
	}
}

// Load reads all five datasets. The export table has its placeholder
// sentinel replaced by the missing marker before it is returned; the
// resulting Store never mutates afterwards.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	production, err := l.loadTable(ctx, KindProduction, l.cfg.DatasetPath(l.cfg.Data.ProductionFile), false)
	if err != nil {
		return nil, err
	}

	consumption, err := l.loadTable(ctx, KindConsumption, l.cfg.DatasetPath(l.cfg.Data.ConsumptionFile), false)
	if err != nil {
		return nil, err
	}

	imports, err := l.loadTable(ctx, KindImport, l.cfg.DatasetPath(l.cfg.Data.ImportFile), false)
	if err != nil {
		return nil, err
	}

	exports, err := l.loadTable(ctx, KindExport, l.cfg.DatasetPath(l.cfg.Data.ExportFile), true)
	if err != nil {
		return nil, err
	}

	flows, err := l.loadFlows(ctx, l.cfg.DatasetPath(l.cfg.Data.TradeFlowFile))
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "all datasets loaded",
		slog.Int("production_countries", production.Len()),
		slog.Int("consumption_countries", consumption.Len()),
		slog.Int("import_countries", imports.Len()),
		slog.Int("export_countries", exports.Len()),
		slog.Int("trade_flows", flows.Len()),
	)

	return &Store{
		Production:  production,
		Consumption: consumption,
		Import:      imports,
		Export:      exports,
		Flows:       flows,
	}, nil
}

// LoadTradeInputs reads only the export and import tables. The flow
// generator runs before the synthetic flow file exists, so it cannot
// use Load.
func (l *Loader) LoadTradeInputs(ctx context.Context) (exports, imports *Table, err error) {
	exports, err = l.loadTable(ctx, KindExport, l.cfg.DatasetPath(l.cfg.Data.ExportFile), true)
	if err != nil {
		return nil, nil, err
	}
	imports, err = l.loadTable(ctx, KindImport, l.cfg.DatasetPath(l.cfg.Data.ImportFile), false)
	if err != nil {
		return nil, nil, err
	}
	return exports, imports, nil
}

// loadTable parses one wide-format CSV into a Table.
func (l *Loader) loadTable(ctx context.Context, kind Kind, path string, cleanSentinel bool) (*Table, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s dataset: %w", kind, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", kind, err)
	}

	layout, err := mapColumns(header)
	if err != nil {
		return nil, fmt.Errorf("unusable %s header: %w", kind, err)
	}

	var rows []Row

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s record: %w", kind, err)
		}

		country := strings.TrimSpace(record[layout.country])
		if country == "" {
			continue
		}

		row := Row{
			Country: country,
			Values:  make([]float64, config.YearMax-config.YearMin+1),
		}
		for j := range row.Values {
			row.Values[j] = Missing
		}

		if layout.coffeeType >= 0 && layout.coffeeType < len(record) {
			row.CoffeeType = strings.TrimSpace(record[layout.coffeeType])
		}

		for year, col := range layout.years {
			v := Missing
			if col < len(record) {
				v = parseValue(record[col])
			}
			row.Values[year-config.YearMin] = v
		}

		if layout.total >= 0 && layout.total < len(record) {
			row.Total = parseValue(record[layout.total])
		} else {
			row.Total = SumValues(row.Values)
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s dataset %s contains no rows", kind, path)
	}

	table := NewTable(kind, config.Years(), rows)
	cleaned := 0
	if cleanSentinel {
		table, cleaned = CleanPlaceholders(table)
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset", string(kind)),
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int("placeholders_cleaned", cleaned),
		slog.Duration("duration", time.Since(start)),
	)
	infrastructure.RecordDatasetLoad(ctx, l.metrics, string(kind), len(rows), cleaned, time.Since(start))

	return table, nil
}

// loadFlows parses the long-format synthetic trade flow CSV.
func (l *Loader) loadFlows(ctx context.Context, path string) (*FlowTable, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade flow dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read trade flow header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	exporterCol, ok := cols["exporter"]
	if !ok {
		return nil, fmt.Errorf("trade flow dataset missing Exporter column")
	}
	importerCol, ok := cols["importer"]
	if !ok {
		return nil, fmt.Errorf("trade flow dataset missing Importer column")
	}
	yearCol, ok := cols["year"]
	if !ok {
		return nil, fmt.Errorf("trade flow dataset missing Year column")
	}
	volumeCol, ok := cols["volume"]
	if !ok {
		// Older generator runs named the column Quantity.
		volumeCol, ok = cols["quantity"]
	}
	if !ok {
		return nil, fmt.Errorf("trade flow dataset missing Volume column")
	}

	var flows []Flow

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read trade flow record: %w", err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(record[yearCol]))
		if err != nil {
			continue
		}

		volume := parseValue(record[volumeCol])
		if IsMissing(volume) {
			continue
		}

		flows = append(flows, Flow{
			Exporter: strings.TrimSpace(record[exporterCol]),
			Importer: strings.TrimSpace(record[importerCol]),
			Year:     year,
			Volume:   volume,
		})
	}

	if len(flows) == 0 {
		return nil, fmt.Errorf("trade flow dataset %s contains no rows", path)
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset", "trade_flows"),
		slog.String("path", path),
		slog.Int("rows", len(flows)),
		slog.Duration("duration", time.Since(start)),
	)
	infrastructure.RecordDatasetLoad(ctx, l.metrics, "trade_flows", len(flows), 0, time.Since(start))

	return NewFlowTable(flows), nil
}

// columnLayout maps the parsed CSV header positions.
type columnLayout struct {
	country    int
	coffeeType int
	total      int
	years      map[int]int
}

// mapColumns locates the country, coffee type, total, and year columns.
// Year headers come in the "1990/91" split-season form; the leading
// calendar year is the key.
func mapColumns(header []string) (columnLayout, error) {
	layout := columnLayout{
		country:    -1,
		coffeeType: -1,
		total:      -1,
		years:      make(map[int]int),
	}

	for i, name := range header {
		name = strings.TrimSpace(name)
		lower := strings.ToLower(name)

		switch {
		case lower == "country" || strings.Contains(lower, "country"):
			if layout.country == -1 {
				layout.country = i
			}
		case strings.Contains(lower, "coffee type") || lower == "type":
			layout.coffeeType = i
		case strings.HasPrefix(lower, "total"):
			layout.total = i
		default:
			if year, ok := parseSeasonYear(name); ok {
				layout.years[year] = i
			}
		}
	}

	if layout.country == -1 {
		return layout, fmt.Errorf("no country column found")
	}
	if len(layout.years) == 0 {
		return layout, fmt.Errorf("no year columns found")
	}

	return layout, nil
}

// parseSeasonYear parses "1990/91" style headers into the leading year.
// Plain "1990" headers are accepted too.
func parseSeasonYear(name string) (int, bool) {
	lead := name
	if i := strings.IndexByte(name, '/'); i >= 0 {
		lead = name[:i]
	}
	year, err := strconv.Atoi(strings.TrimSpace(lead))
	if err != nil {
		return 0, false
	}
	if year < config.YearMin || year > config.YearMax {
		return 0, false
	}
	return year, true
}

// parseValue parses a numeric cell. Empty cells and unparsable text
// become the missing marker.
func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	return v
}

// SumValues sums a series, skipping missing entries.
func SumValues(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		if !IsMissing(v) {
			sum += v
		}
	}
	return sum
}
