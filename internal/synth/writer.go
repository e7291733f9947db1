package synth

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"coffeepulse/internal/dataset"
)

// WriteCSV writes the flows in the long format the dashboard loader
// reads back.
func WriteCSV(path string, flows []dataset.Flow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create flow file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Exporter", "Importer", "Year", "Volume"}); err != nil {
		return fmt.Errorf("failed to write flow header: %w", err)
	}

	for _, flow := range flows {
		record := []string{
			flow.Exporter,
			flow.Importer,
			strconv.Itoa(flow.Year),
			strconv.FormatInt(int64(flow.Volume), 10),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write flow record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush flow file: %w", err)
	}
	return nil
}
