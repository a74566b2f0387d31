package delimited

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsynth/domain/core"
)

func TestObservationReader_NumericAndTextViews(t *testing.T) {
	content := "id,weight,belonging,re_all\n" +
		"1,0.98,3.5,White\n" +
		"2,1.12,,Hispanic/Latino\n" +
		"3,1.05,2.75,White\n"

	tbl, err := NewObservationReader(writeFixture(t, "obs.csv", content)).Read()
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, []core.VariableKey{"id", "weight", "belonging", "re_all"}, tbl.Keys())

	belonging, err := tbl.Column("belonging")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, belonging[0], 1e-12)
	assert.True(t, math.IsNaN(belonging[1]))
	assert.InDelta(t, 2.75, belonging[2], 1e-12)

	// Non-numeric columns are NaN numerically but keep their text.
	race, err := tbl.Column("re_all")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(race[0]))
	raw, ok := tbl.Text("re_all")
	require.True(t, ok)
	assert.Equal(t, []string{"White", "Hispanic/Latino", "White"}, raw)
}

func TestObservationReader_RaggedRowsPadWithMissing(t *testing.T) {
	content := "id,weight,score\n" +
		"1,0.98\n" +
		"2,1.12,4.5\n"

	tbl, err := NewObservationReader(writeFixture(t, "obs.csv", content)).Read()
	require.NoError(t, err)

	score, err := tbl.Column("score")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(score[0]))
	assert.InDelta(t, 4.5, score[1], 1e-12)
}

func TestObservationReader_HeaderOnlyIsEmptyTable(t *testing.T) {
	_, err := NewObservationReader(writeFixture(t, "obs.csv", "id,weight\n")).Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestObservationReader_WeightsFallBackToUnit(t *testing.T) {
	content := "id,score\n1,2\n2,4\n"
	tbl, err := NewObservationReader(writeFixture(t, "obs.csv", content)).Read()
	require.NoError(t, err)

	w, found := tbl.Weights("weight")
	assert.False(t, found)
	assert.Equal(t, []float64{1, 1}, w)
}
