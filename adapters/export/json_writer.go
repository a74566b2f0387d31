package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"semsynth/internal"
)

// JSONWriter writes run payloads as indented JSON files under a single
// output directory, one file per payload. Satisfies the ChartDataSink and
// DocumentSink ports.
type JSONWriter struct {
	outDir string
	log    *internal.Logger
}

// NewJSONWriter creates a writer rooted at outDir, creating it if needed.
func NewJSONWriter(outDir string, log *internal.Logger) (*JSONWriter, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &JSONWriter{outDir: outDir, log: log}, nil
}

// WriteJSON marshals the payload with two-space indentation and writes it
// atomically (temp file + rename) so a crashed run never leaves a torn file
// for the report server to pick up.
func (w *JSONWriter) WriteJSON(ctx context.Context, name string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := w.writeAtomic(name, data); err != nil {
		return err
	}
	w.log.Info("wrote %s (%d bytes)", name, len(data))
	return nil
}

// WriteDocument writes a rendered document next to the JSON payloads.
func (w *JSONWriter) WriteDocument(ctx context.Context, name string, content []byte) error {
	if err := w.writeAtomic(name, content); err != nil {
		return err
	}
	w.log.Info("wrote %s (%d bytes)", name, len(content))
	return nil
}

func (w *JSONWriter) writeAtomic(name string, data []byte) error {
	target := filepath.Join(w.outDir, name)
	tmp, err := os.CreateTemp(w.outDir, name+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

// Path returns the absolute location of a payload file.
func (w *JSONWriter) Path(name string) string {
	return filepath.Join(w.outDir, name)
}
