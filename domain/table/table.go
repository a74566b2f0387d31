package table

import (
	"math"

	"semsynth/domain/core"
)

// Table is the canonical observation table for all weighted computation.
// One row per subject; missing cells are NaN. Columns keep their appearance
// order from the source file so categorical displays stay stable.
type Table struct {
	keys []core.VariableKey
	cols map[core.VariableKey][]float64
	text map[core.VariableKey][]string
	rows int
}

// New creates an empty table sized for n rows.
func New(rows int) *Table {
	return &Table{
		cols: make(map[core.VariableKey][]float64),
		text: make(map[core.VariableKey][]string),
		rows: rows,
	}
}

// AddColumn registers a column with its numeric values and original cell text.
// Values must have exactly RowCount entries; NaN marks a missing cell.
func (t *Table) AddColumn(key core.VariableKey, values []float64, raw []string) error {
	if len(values) != t.rows {
		return core.ErrLengthMismatch
	}
	if _, exists := t.cols[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.cols[key] = values
	if raw != nil {
		t.text[key] = raw
	}
	return nil
}

// AddDerived registers a computed numeric column (e.g., a composite scale mean).
func (t *Table) AddDerived(key core.VariableKey, values []float64) error {
	return t.AddColumn(key, values, nil)
}

// Column returns the numeric values for a column.
func (t *Table) Column(key core.VariableKey) ([]float64, error) {
	vals, ok := t.cols[key]
	if !ok {
		return nil, core.NewColumnNotFoundError(key.String())
	}
	return vals, nil
}

// Text returns the original cell text for a column, when the source kept it.
// Numeric-only and derived columns have no text representation.
func (t *Table) Text(key core.VariableKey) ([]string, bool) {
	raw, ok := t.text[key]
	return raw, ok
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(key core.VariableKey) bool {
	_, ok := t.cols[key]
	return ok
}

// Keys returns column keys in appearance order.
func (t *Table) Keys() []core.VariableKey {
	out := make([]core.VariableKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// RowCount returns the number of subject rows.
func (t *Table) RowCount() int {
	return t.rows
}

// Weights resolves the weight vector for a reporting run. When the named
// column is absent (or no name is given) every subject gets unit weight;
// the bool reports whether real weights were found so callers can label
// outputs accordingly.
func (t *Table) Weights(weightCol core.VariableKey) ([]float64, bool) {
	if weightCol != "" {
		if w, err := t.Column(weightCol); err == nil {
			out := make([]float64, len(w))
			copy(out, w)
			return out, true
		}
	}
	w := make([]float64, t.rows)
	for i := range w {
		w[i] = 1
	}
	return w, false
}

// RowMean writes the per-row mean across the given columns into a new
// column, skipping NaN cells row-wise. Rows missing every item are NaN.
func (t *Table) RowMean(items []core.VariableKey) ([]float64, error) {
	cols := make([][]float64, 0, len(items))
	for _, key := range items {
		vals, err := t.Column(key)
		if err != nil {
			return nil, err
		}
		cols = append(cols, vals)
	}
	out := make([]float64, t.rows)
	for i := 0; i < t.rows; i++ {
		sum, n := 0.0, 0
		for _, vals := range cols {
			if !math.IsNaN(vals[i]) {
				sum += vals[i]
				n++
			}
		}
		if n == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(n)
		}
	}
	return out, nil
}

// Select returns the values of a column restricted to rows where pred is true,
// alongside the matching weights. Used for group contrasts.
func (t *Table) Select(key core.VariableKey, w []float64, pred func(row int) bool) (vals, weights []float64, err error) {
	col, err := t.Column(key)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < t.rows; i++ {
		if pred(i) {
			vals = append(vals, col[i])
			weights = append(weights, w[i])
		}
	}
	return vals, weights, nil
}
