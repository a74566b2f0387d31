package ports

import (
	"semsynth/domain/params"
	"semsynth/domain/table"
)

// ObservationSource supplies the subject-level observation table. CSV and
// XLSX adapters both satisfy this; the app layer never knows which.
type ObservationSource interface {
	Read() (*table.Table, error)
}

// ParameterSource supplies one model's parameter estimate table.
type ParameterSource interface {
	Read() (params.Table, error)
}

// FitSource supplies one model's global fit indices. An empty map is valid:
// some model directories ship estimates without fit output.
type FitSource interface {
	Read() (map[string]float64, error)
}
