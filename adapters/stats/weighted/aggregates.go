package weighted

import "math"

// ValueCount is one category's accumulated weight.
type ValueCount struct {
	Value  float64
	Weight float64
}

// TextCount is one text category's accumulated weight.
type TextCount struct {
	Value  string
	Weight float64
}

// GroupStat is one group's computed statistic.
type GroupStat struct {
	Group float64
	Value float64
}

// Proportion computes the weighted proportion of a {0,1} field. It is the
// weighted mean restricted to a binary column.
func Proportion(binary, w []float64) float64 {
	return Mean(binary, w)
}

// ValueCounts sums weights per distinct numeric category, in appearance
// order. With normalize, each weight is divided by the total weight.
// Pairs with a missing value or weight are dropped.
func ValueCounts(vals, w []float64, normalize bool) []ValueCount {
	var order []float64
	totals := make(map[float64]float64)
	grand := 0.0
	for i := range vals {
		if i >= len(w) {
			break
		}
		if math.IsNaN(vals[i]) || math.IsNaN(w[i]) {
			continue
		}
		if _, seen := totals[vals[i]]; !seen {
			order = append(order, vals[i])
		}
		totals[vals[i]] += w[i]
		grand += w[i]
	}
	out := make([]ValueCount, 0, len(order))
	for _, v := range order {
		weight := totals[v]
		if normalize {
			if grand == 0 {
				weight = math.NaN()
			} else {
				weight /= grand
			}
		}
		out = append(out, ValueCount{Value: v, Weight: weight})
	}
	return out
}

// TextCounts is ValueCounts for text categories. Empty cells count as
// missing.
func TextCounts(vals []string, w []float64, normalize bool) []TextCount {
	var order []string
	totals := make(map[string]float64)
	grand := 0.0
	for i := range vals {
		if i >= len(w) {
			break
		}
		if vals[i] == "" || math.IsNaN(w[i]) {
			continue
		}
		if _, seen := totals[vals[i]]; !seen {
			order = append(order, vals[i])
		}
		totals[vals[i]] += w[i]
		grand += w[i]
	}
	out := make([]TextCount, 0, len(order))
	for _, v := range order {
		weight := totals[v]
		if normalize {
			if grand == 0 {
				weight = math.NaN()
			} else {
				weight /= grand
			}
		}
		out = append(out, TextCount{Value: v, Weight: weight})
	}
	return out
}

// GroupMeans applies Mean per distinct non-missing group value, in the
// groups' appearance order. Groups absent from the data are simply absent
// from the result, not zero entries.
func GroupMeans(group, vals, w []float64) []GroupStat {
	return groupApply(group, vals, w, Mean)
}

// GroupSEMs applies SEM per distinct non-missing group value.
func GroupSEMs(group, vals, w []float64) []GroupStat {
	return groupApply(group, vals, w, SEM)
}

func groupApply(group, vals, w []float64, fn func(x, w []float64) float64) []GroupStat {
	var order []float64
	members := make(map[float64][]int)
	for i := range group {
		if math.IsNaN(group[i]) {
			continue
		}
		if _, seen := members[group[i]]; !seen {
			order = append(order, group[i])
		}
		members[group[i]] = append(members[group[i]], i)
	}
	out := make([]GroupStat, 0, len(order))
	for _, g := range order {
		idx := members[g]
		gv := make([]float64, 0, len(idx))
		gw := make([]float64, 0, len(idx))
		for _, i := range idx {
			if i < len(vals) && i < len(w) {
				gv = append(gv, vals[i])
				gw = append(gw, w[i])
			}
		}
		out = append(out, GroupStat{Group: g, Value: fn(gv, gw)})
	}
	return out
}
