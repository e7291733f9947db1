package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coffeepulse/internal/dataset"
)

func TestWorkbook(t *testing.T) {
	svc := NewExportService(testStore(t), testLogger(), nil)

	data, err := svc.Workbook(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Production")
	assert.Contains(t, sheets, "Export")
	assert.Contains(t, sheets, "Annual totals")
	assert.Contains(t, sheets, "Coffee types")

	// Ranking sheet: header then Brazil first by total.
	rank, err := f.GetCellValue("Production", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Brazil", rank)

	year, err := f.GetCellValue("Annual totals", "A2")
	require.NoError(t, err)
	assert.Equal(t, "1990", year)

	// Type buckets sort alphabetically; Arabica is Colombia alone.
	label, err := f.GetCellValue("Coffee types", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Arabica", label)
	arabica, err := f.GetCellValue("Coffee types", "B2")
	require.NoError(t, err)
	assert.Equal(t, "300", arabica)
}

func TestTrendPNG(t *testing.T) {
	svc := NewExportService(testStore(t), testLogger(), nil)

	data, err := svc.TrendPNG(context.Background(), dataset.KindProduction)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// PNG magic header.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestTrendPNG_UnknownKind(t *testing.T) {
	svc := NewExportService(testStore(t), testLogger(), nil)

	_, err := svc.TrendPNG(context.Background(), dataset.Kind("bogus"))
	require.Error(t, err)
}
