package delimited

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"

	"semsynth/domain/core"
	"semsynth/domain/table"
)

// ObservationReader loads a subject-level CSV into the canonical observation
// table. Every column keeps both its numeric view (NaN for blanks and
// non-numeric cells) and its original cell text so categorical breakdowns can
// report the source labels.
type ObservationReader struct {
	filePath string
}

// NewObservationReader creates a reader for the given CSV file.
func NewObservationReader(filePath string) *ObservationReader {
	return &ObservationReader{filePath: filePath}
}

// Read parses the whole file into a table.
func (r *ObservationReader) Read() (*table.Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open observation file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read observation file: %w", err)
	}
	if len(rows) < 2 {
		return nil, core.ErrEmptyTable
	}

	header := rows[0]
	dataRows := rows[1:]
	t := table.New(len(dataRows))

	for colIdx, name := range header {
		key := core.VariableKey(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		values := make([]float64, len(dataRows))
		raw := make([]string, len(dataRows))
		for i, row := range dataRows {
			cell := ""
			if colIdx < len(row) {
				cell = strings.TrimSpace(row[colIdx])
			}
			raw[i] = cell
			values[i] = parseCell(cell)
		}
		if err := t.AddColumn(key, values, raw); err != nil {
			return nil, fmt.Errorf("failed to add column %s: %w", key, err)
		}
	}

	log.Printf("[ObservationReader] %s loaded (%d columns, %d rows)",
		r.filePath, len(t.Keys()), t.RowCount())
	return t, nil
}
