package delimited

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"semsynth/domain/core"
	"semsynth/domain/params"
)

// ParamReader parses lavaan-style parameter estimate exports: one header
// row plus one row per parameter, tab-separated. Files written by older
// export scripts occasionally use runs of spaces instead of tabs, so the
// splitter falls back to whitespace fields when a line has no tab.
type ParamReader struct {
	filePath string
}

// NewParamReader creates a reader for the given estimates file.
func NewParamReader(filePath string) *ParamReader {
	return &ParamReader{filePath: filePath}
}

// Read parses the file into a parameter table, preserving row order.
// Numeric cells that are empty or "NA" come back as NaN so downstream
// consumers can apply their own undefined-value handling.
func (r *ParamReader) Read() (params.Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open estimates file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read estimates header: %w", err)
		}
		return nil, fmt.Errorf("estimates file is empty: %s", r.filePath)
	}
	header := splitFields(scanner.Text())
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"label", "op", "lhs", "rhs", "est"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("estimates file missing %q column: %s", required, r.filePath)
		}
	}

	var tbl params.Table
	line := 1
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		fields := splitFields(raw)
		cell := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		rec := params.ParameterRecord{
			Label:       core.PathLabel(cell("label")),
			Op:          cell("op"),
			LHS:         cell("lhs"),
			RHS:         cell("rhs"),
			Estimate:    parseCell(cell("est")),
			SE:          parseCell(cell("se")),
			Z:           parseCell(cell("z")),
			PValue:      parseCell(cell("pvalue")),
			CILower:     parseCell(cell("ci.lower")),
			CIUpper:     parseCell(cell("ci.upper")),
			StdEstimate: parseCell(cell("std.all")),
			Sig:         cell("sig"),
		}
		// Multi-group exports label the grouping column either way.
		if g := cell("group.label"); g != "" {
			rec.Group = g
		} else {
			rec.Group = cell("group")
		}
		tbl = append(tbl, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read estimates file at line %d: %w", line, err)
	}

	log.Printf("[ParamReader] %s parsed (%d parameter rows)", r.filePath, len(tbl))
	return tbl, nil
}

// splitFields splits a line on tabs, falling back to whitespace runs for
// lines that carry none.
func splitFields(line string) []string {
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	return strings.Fields(line)
}

// parseCell converts a numeric cell to float64, NaN when absent.
func parseCell(s string) float64 {
	if s == "" || s == "NA" || s == "NaN" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
