package excel

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"semsynth/domain/core"
	"semsynth/domain/table"
)

// Reader loads a subject-level workbook into the canonical observation
// table. Survey exports arrive as a single data sheet: headers in row one,
// one subject per row.
type Reader struct {
	filePath string
	sheet    string
}

// NewReader creates a reader for the given workbook. An empty sheet name
// means the workbook's first sheet.
func NewReader(filePath, sheet string) *Reader {
	return &Reader{filePath: filePath, sheet: sheet}
}

// Read parses the sheet into a table. Numeric cells parse to float64; blanks
// and non-numeric cells are NaN, with the original text kept alongside.
func (r *Reader) Read() (*table.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", r.filePath)
	}

	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[ExcelReader] %s sheet %s read in %.2fms (%d rows)",
		r.filePath, sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

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
			values[i] = parseNumeric(cell)
		}
		if err := t.AddColumn(key, values, raw); err != nil {
			return nil, fmt.Errorf("failed to add column %s: %w", key, err)
		}
	}
	return t, nil
}

func parseNumeric(s string) float64 {
	if s == "" || s == "NA" || s == "NaN" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
