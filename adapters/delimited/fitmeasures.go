package delimited

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
)

// keyFitMeasures are the global fit indices the reports surface. Everything
// else in the export is dropped.
var keyFitMeasures = map[string]bool{
	"chisq": true, "df": true, "pvalue": true,
	"cfi": true, "tli": true, "rmsea": true, "srmr": true,
	"cfi.scaled": true, "tli.scaled": true, "rmsea.scaled": true,
	"cfi.robust": true, "tli.robust": true, "rmsea.robust": true,
}

// FitReader adapts a fit-measures file to the FitSource port.
type FitReader struct {
	filePath string
}

// NewFitReader creates a reader for the given fit-measures file.
func NewFitReader(filePath string) *FitReader {
	return &FitReader{filePath: filePath}
}

// Read parses the file; see ReadFitMeasures.
func (r *FitReader) Read() (map[string]float64, error) {
	return ReadFitMeasures(r.filePath)
}

// ReadFitMeasures parses a two-column key/value fit-measures export into a
// map of the key indices, rounded to four decimals. A missing file is not an
// error: some model directories ship estimates without fit output, and the
// report simply omits the fit block.
func ReadFitMeasures(filePath string) (map[string]float64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[FitMeasures] %s not found, skipping fit block", filePath)
			return map[string]float64{}, nil
		}
		return nil, fmt.Errorf("failed to open fit measures file: %w", err)
	}
	defer file.Close()

	fit := make(map[string]float64)
	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		fields := splitFields(scanner.Text())
		if first {
			// Header row.
			first = false
			continue
		}
		if len(fields) < 2 {
			continue
		}
		key := fields[0]
		if !keyFitMeasures[key] {
			continue
		}
		v := parseCell(fields[1])
		if math.IsNaN(v) {
			continue
		}
		fit[key] = math.Round(v*1e4) / 1e4
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fit measures file: %w", err)
	}
	return fit, nil
}
