package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeepulse/internal/dataset"
)

func TestAggregateFlows_Unfiltered_TopN(t *testing.T) {
	var flows []dataset.Flow
	// 20 exporters shipping to one importer, volumes 1..20.
	for i := 1; i <= 20; i++ {
		flows = append(flows, dataset.Flow{
			Exporter: fmt.Sprintf("Exp%02d", i),
			Importer: "Germany",
			Year:     1990,
			Volume:   float64(i),
		})
	}
	ft := dataset.NewFlowTable(flows)

	sel := AggregateFlows(ft, 1990, "", "", 15)
	require.Len(t, sel.Exporters, 15)
	assert.Equal(t, []string{"Germany"}, sel.Importers)
	assert.Len(t, sel.Links, 15)

	// Largest volumes survive the cut.
	assert.Equal(t, "Exp20", sel.Links[0].Exporter)
	assert.Equal(t, 20.0, sel.Links[0].Volume)
}

func TestAggregateFlows_PinnedExporterKeepsAll(t *testing.T) {
	var flows []dataset.Flow
	for i := 1; i <= 20; i++ {
		flows = append(flows, dataset.Flow{
			Exporter: "Brazil",
			Importer: fmt.Sprintf("Imp%02d", i),
			Year:     1990,
			Volume:   float64(i),
		})
	}
	ft := dataset.NewFlowTable(flows)

	sel := AggregateFlows(ft, 1990, "Brazil", "", 15)
	assert.Len(t, sel.Importers, 20)
	assert.Len(t, sel.Links, 20)
}

func TestAggregateFlows_SumsDuplicatePairs(t *testing.T) {
	ft := dataset.NewFlowTable([]dataset.Flow{
		{Exporter: "Brazil", Importer: "Germany", Year: 1990, Volume: 10},
		{Exporter: "Brazil", Importer: "Germany", Year: 1990, Volume: 15},
	})

	sel := AggregateFlows(ft, 1990, "", "", 15)
	require.Len(t, sel.Links, 1)
	assert.Equal(t, 25.0, sel.Links[0].Volume)
}

func TestAggregateFlows_EmptySelection(t *testing.T) {
	ft := dataset.NewFlowTable([]dataset.Flow{
		{Exporter: "Brazil", Importer: "Germany", Year: 1990, Volume: 10},
	})

	sel := AggregateFlows(ft, 2001, "", "", 15)
	assert.Empty(t, sel.Links)
	assert.Empty(t, sel.Exporters)

	sel = AggregateFlows(ft, 1990, "Colombia", "", 15)
	assert.Empty(t, sel.Links)
}

func TestAggregateFlows_YearZeroMatchesAll(t *testing.T) {
	ft := dataset.NewFlowTable([]dataset.Flow{
		{Exporter: "Brazil", Importer: "Germany", Year: 1990, Volume: 10},
		{Exporter: "Brazil", Importer: "Germany", Year: 1991, Volume: 5},
	})

	sel := AggregateFlows(ft, 0, "", "", 15)
	require.Len(t, sel.Links, 1)
	assert.Equal(t, 15.0, sel.Links[0].Volume)
}

func TestFlowYears(t *testing.T) {
	ft := dataset.NewFlowTable([]dataset.Flow{
		{Exporter: "A", Importer: "B", Year: 1992, Volume: 1},
		{Exporter: "A", Importer: "B", Year: 1990, Volume: 1},
		{Exporter: "A", Importer: "B", Year: 1992, Volume: 1},
	})

	assert.Equal(t, []int{1990, 1992}, FlowYears(ft))
}
