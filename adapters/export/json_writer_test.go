package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsynth/internal"
)

func TestJSONWriter_WriteJSON(t *testing.T) {
	dir := t.TempDir()
	w, err := NewJSONWriter(dir, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)

	payload := map[string]any{"n": 2000, "weighted": true}
	require.NoError(t, w.WriteJSON(context.Background(), "sampleDescriptives.json", payload))

	data, err := os.ReadFile(w.Path("sampleDescriptives.json"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(2000), got["n"])
	assert.Equal(t, true, got["weighted"])

	// Indented output, and no temp files left behind.
	assert.True(t, strings.Contains(string(data), "\n  "))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONWriter_OverwritesPrevious(t *testing.T) {
	dir := t.TempDir()
	w, err := NewJSONWriter(dir, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)

	require.NoError(t, w.WriteJSON(context.Background(), "x.json", map[string]int{"v": 1}))
	require.NoError(t, w.WriteJSON(context.Background(), "x.json", map[string]int{"v": 2}))

	data, err := os.ReadFile(filepath.Join(dir, "x.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"v": 2`)
}

func TestJSONWriter_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := NewJSONWriter(dir, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)

	require.NoError(t, w.WriteDocument(context.Background(), "summary.md", []byte("# hi")))
	data, err := os.ReadFile(filepath.Join(dir, "summary.md"))
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(data))
}
