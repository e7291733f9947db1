package dataset

import "coffeepulse/internal/config"

// CleanPlaceholders returns a copy of the table with every placeholder
// sentinel replaced by the missing marker. Rows without sentinels are
// reused as-is. The input table is never modified.
func CleanPlaceholders(t *Table) (*Table, int) {
	cleaned := 0
	rows := t.Rows()

	for i := range rows {
		dirty := rows[i].Total == float64(config.ExportSentinel)
		for _, v := range rows[i].Values {
			if v == float64(config.ExportSentinel) {
				dirty = true
				break
			}
		}
		if !dirty {
			continue
		}

		values := make([]float64, len(rows[i].Values))
		for j, v := range rows[i].Values {
			if v == float64(config.ExportSentinel) {
				values[j] = Missing
				cleaned++
			} else {
				values[j] = v
			}
		}
		rows[i].Values = values

		if rows[i].Total == float64(config.ExportSentinel) {
			cleaned++
		}
		// A total derived before cleanup carries the sentinel in its
		// sum, so rebuild it from the cleaned values either way.
		rows[i].Total = SumValues(values)
	}

	return NewTable(t.kind, t.years, rows), cleaned
}
