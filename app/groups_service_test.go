package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsynth/domain/params"
	"semsynth/ports"
)

func groupedTable() params.Table {
	return params.Table{
		{Label: "a1", Op: "~", LHS: "distress", RHS: "x_FASt", Estimate: 0.11, SE: 0.03, Group: "1"},
		{Label: "c", Op: "~", LHS: "adjustment", RHS: "x_FASt", Estimate: 0.21, SE: 0.05, Group: "1"},
		{Label: "a1", Op: "~", LHS: "distress", RHS: "x_FASt", Estimate: 0.08, SE: 0.04, Group: "2"},
		{Label: "c", Op: "~", LHS: "adjustment", RHS: "x_FASt", Estimate: 0.19, SE: 0.06, Group: "2"},
	}
}

func TestGroupsService_CombinedTableSplitsOnGroupColumn(t *testing.T) {
	svc := NewGroupsService(testLogger())
	out, err := svc.Compare(context.Background(), []GroupInput{
		{
			Variable: "sex",
			Combined: fakeParamSource{tbl: groupedTable()},
			Labels:   []string{"women", "men"},
		},
	})
	require.NoError(t, err)

	groups, ok := out["sex"]
	require.True(t, ok)
	require.Len(t, groups, 2)

	women := groups["women"]
	require.Len(t, women, 2)
	assert.Equal(t, "a1", women[0].ID)
	assert.InDelta(t, 0.11, *women[0].Estimate, 1e-12)

	men := groups["men"]
	require.Len(t, men, 2)
	assert.InDelta(t, 0.08, *men[0].Estimate, 1e-12)
}

func TestGroupsService_PerGroupSources(t *testing.T) {
	svc := NewGroupsService(testLogger())
	out, err := svc.Compare(context.Background(), []GroupInput{
		{
			Variable: "re_all",
			PerGroup: map[string]ports.ParameterSource{
				"White":           fakeParamSource{tbl: params.Table{{Label: "a1", Op: "~", LHS: "distress", RHS: "x_FASt", Estimate: 0.10}}},
				"Hispanic/Latino": fakeParamSource{tbl: params.Table{{Label: "a1", Op: "~", LHS: "distress", RHS: "x_FASt", Estimate: 0.14}}},
			},
		},
	})
	require.NoError(t, err)

	groups := out["re_all"]
	require.Len(t, groups, 2)
	assert.InDelta(t, 0.10, *groups["White"][0].Estimate, 1e-12)
	assert.InDelta(t, 0.14, *groups["Hispanic/Latino"][0].Estimate, 1e-12)
}

func TestGroupsService_UnreadableInputIsSkipped(t *testing.T) {
	svc := NewGroupsService(testLogger())
	out, err := svc.Compare(context.Background(), []GroupInput{
		{Variable: "sex", Combined: fakeParamSource{err: assert.AnError}},
		{Variable: "re_all", Combined: fakeParamSource{tbl: groupedTable()}},
	})
	require.NoError(t, err)

	assert.NotContains(t, out, "sex")
	assert.Contains(t, out, "re_all")
}
