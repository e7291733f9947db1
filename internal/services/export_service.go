package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"coffeepulse/internal/analytics"
	"coffeepulse/internal/dataset"
	apierrors "coffeepulse/internal/errors"
	"coffeepulse/internal/infrastructure"
)

// ExportService renders downloadable artifacts: an Excel workbook of
// the rankings and annual totals, and a standalone PNG of a trend fit.
type ExportService struct {
	store   *dataset.Store
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewExportService creates the export service.
func NewExportService(store *dataset.Store, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *ExportService {
	return &ExportService{
		store:   store,
		logger:  logger.With(slog.String("component", "export_service")),
		metrics: metrics,
	}
}

// Workbook builds an xlsx with one ranking sheet per dataset, an
// annual totals sheet across all four, and a coffee type summary.
func (s *ExportService) Workbook(ctx context.Context) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	kinds := []dataset.Kind{
		dataset.KindProduction,
		dataset.KindConsumption,
		dataset.KindImport,
		dataset.KindExport,
	}

	for i, kind := range kinds {
		sheet := sheetName(kind)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, apierrors.ExportError(err)
			}
		}

		if err := s.writeRankingSheet(f, sheet, s.store.Table(kind)); err != nil {
			return nil, apierrors.ExportError(err)
		}
	}

	if _, err := f.NewSheet("Annual totals"); err != nil {
		return nil, apierrors.ExportError(err)
	}
	if err := s.writeTotalsSheet(f, "Annual totals", kinds); err != nil {
		return nil, apierrors.ExportError(err)
	}

	if _, err := f.NewSheet("Coffee types"); err != nil {
		return nil, apierrors.ExportError(err)
	}
	if err := s.writeTypesSheet(f, "Coffee types"); err != nil {
		return nil, apierrors.ExportError(err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apierrors.ExportError(err)
	}

	if s.metrics != nil {
		s.metrics.WorkbookExportsTotal.Add(ctx, 1)
	}

	s.logger.InfoContext(ctx, "workbook exported",
		slog.Int("bytes", buf.Len()),
		slog.Duration("duration", time.Since(start)),
	)

	return buf.Bytes(), nil
}

// writeRankingSheet writes one dataset's ranking table.
func (s *ExportService) writeRankingSheet(f *excelize.File, sheet string, t *dataset.Table) error {
	headers := []interface{}{"Rank", "Country", "Coffee type", "Total", "Share (%)"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, rc := range analytics.RankAll(t) {
		row := i + 2
		values := []interface{}{rc.Rank, rc.Country, rc.CoffeeType, rc.Total, rc.Share}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeTotalsSheet writes the per-year totals of every dataset side
// by side.
func (s *ExportService) writeTotalsSheet(f *excelize.File, sheet string, kinds []dataset.Kind) error {
	if err := f.SetCellValue(sheet, "A1", "Year"); err != nil {
		return err
	}
	for i, kind := range kinds {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, sheetName(kind)); err != nil {
			return err
		}
	}

	totalsByKind := make(map[dataset.Kind][]analytics.YearValue, len(kinds))
	for _, kind := range kinds {
		totalsByKind[kind] = analytics.AnnualTotals(s.store.Table(kind))
	}

	years := s.store.Production.Years()
	for rowIdx, year := range years {
		row := rowIdx + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, year); err != nil {
			return err
		}
		for i, kind := range kinds {
			cell, err := excelize.CoordinatesToCellName(i+2, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, totalsByKind[kind][rowIdx].Value); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeTypesSheet writes the all-years coffee type buckets for the two
// tables that carry type labels.
func (s *ExportService) writeTypesSheet(f *excelize.File, sheet string) error {
	headers := []interface{}{"Coffee type", "Production", "Consumption"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	production := analytics.CategoryGrandTotals(s.store.Production)
	consumption := analytics.CategoryGrandTotals(s.store.Consumption)

	labels := make([]string, 0, len(production)+len(consumption))
	seen := make(map[string]bool)
	for _, buckets := range []map[string]float64{production, consumption} {
		for label := range buckets {
			if !seen[label] {
				seen[label] = true
				labels = append(labels, label)
			}
		}
	}
	sort.Strings(labels)

	for i, label := range labels {
		row := i + 2
		values := []interface{}{label, production[label], consumption[label]}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// TrendPNG renders the annual totals of one dataset with its fitted
// trend line as a PNG image.
func (s *ExportService) TrendPNG(ctx context.Context, kind dataset.Kind) ([]byte, error) {
	t := s.store.Table(kind)
	if t == nil {
		return nil, apierrors.ErrTabNotFound
	}

	totals := analytics.AnnualTotals(t)
	fit := analytics.FitTrend(totals)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Coffee %s trend", kind)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Volume (60kg bags)"

	points := make(plotter.XYs, len(totals))
	trend := make(plotter.XYs, len(totals))
	for i, tv := range totals {
		points[i].X = float64(tv.Year)
		points[i].Y = tv.Value
		trend[i].X = float64(tv.Year)
		trend[i].Y = fit.At(tv.Year)
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, apierrors.ExportError(err)
	}
	line.Color = color.RGBA{R: 74, G: 44, B: 42, A: 255}
	line.Width = vg.Points(2)

	trendLine, err := plotter.NewLine(trend)
	if err != nil {
		return nil, apierrors.ExportError(err)
	}
	trendLine.Color = color.RGBA{R: 185, G: 156, B: 107, A: 255}
	trendLine.Width = vg.Points(2)
	trendLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	p.Add(line, trendLine, plotter.NewGrid())
	p.Legend.Add("Annual total", line)
	p.Legend.Add("Trend", trendLine)

	writer, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, apierrors.ExportError(err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, apierrors.ExportError(err)
	}

	if s.metrics != nil {
		s.metrics.TrendRendersTotal.Add(ctx, 1)
	}

	s.logger.InfoContext(ctx, "trend image rendered",
		slog.String("dataset", string(kind)),
		slog.Int("bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// sheetName maps a dataset kind to its workbook sheet title.
func sheetName(kind dataset.Kind) string {
	switch kind {
	case dataset.KindProduction:
		return "Production"
	case dataset.KindConsumption:
		return "Consumption"
	case dataset.KindImport:
		return "Import"
	case dataset.KindExport:
		return "Export"
	default:
		return string(kind)
	}
}
