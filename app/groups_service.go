package app

import (
	"context"
	"fmt"

	"semsynth/adapters/stats/effects"
	"semsynth/domain/params"
	"semsynth/domain/report"
	"semsynth/internal"
	"semsynth/ports"
)

// GroupInput names one multi-group estimate table: a grouping variable plus
// either a single table carrying a group column or one source per group.
type GroupInput struct {
	Variable string
	// Combined is a single estimate table with a group column.
	Combined ports.ParameterSource
	// PerGroup maps a group label to its own estimate table. Used when the
	// upstream fit writes one directory per group.
	PerGroup map[string]ports.ParameterSource
	// Labels renames the raw group values of a combined table, in the
	// order the groups first appear. Optional.
	Labels []string
}

// GroupsService builds per-group key-path extractions for multi-group fits.
type GroupsService struct {
	log *internal.Logger
}

// NewGroupsService creates a groups service.
func NewGroupsService(log *internal.Logger) *GroupsService {
	return &GroupsService{log: log}
}

// Compare extracts key paths per group for every input. A grouping variable
// whose table cannot be read is skipped with a warning rather than failing
// the whole comparison set.
func (s *GroupsService) Compare(ctx context.Context, inputs []GroupInput) (report.GroupComparisons, error) {
	out := make(report.GroupComparisons, len(inputs))
	for _, in := range inputs {
		groups, err := s.compareOne(in)
		if err != nil {
			s.log.Warn("group comparison %q skipped: %v", in.Variable, err)
			continue
		}
		if len(groups) > 0 {
			out[in.Variable] = groups
		}
	}
	return out, nil
}

func (s *GroupsService) compareOne(in GroupInput) (map[string][]params.StructuralPath, error) {
	if in.Combined != nil {
		tbl, err := in.Combined.Read()
		if err != nil {
			return nil, err
		}
		return splitByGroup(tbl, in.Labels), nil
	}

	groups := make(map[string][]params.StructuralPath, len(in.PerGroup))
	for label, src := range in.PerGroup {
		tbl, err := src.Read()
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", label, err)
		}
		groups[label] = effects.KeyPaths(tbl, nil)
	}
	return groups, nil
}

// splitByGroup partitions a combined table on its group column and extracts
// key paths per partition. Group values map to labels in first-appearance
// order; unlabeled groups keep their raw value.
func splitByGroup(tbl params.Table, labels []string) map[string][]params.StructuralPath {
	var order []string
	byGroup := make(map[string]params.Table)
	for _, row := range tbl {
		if row.Group == "" {
			continue
		}
		if _, seen := byGroup[row.Group]; !seen {
			order = append(order, row.Group)
		}
		byGroup[row.Group] = append(byGroup[row.Group], row)
	}

	out := make(map[string][]params.StructuralPath, len(order))
	for i, value := range order {
		label := value
		if i < len(labels) {
			label = labels[i]
		}
		paths := effects.KeyPaths(byGroup[value], nil)
		if len(paths) > 0 {
			out[label] = paths
		}
	}
	return out
}
