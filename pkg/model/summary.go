// pkg/model/summary.go
package model

import "sort"

// GroupSummary maps a categorical group value (e.g. a brand name) to the
// truncated integer mean of one numeric field across that group. It is
// produced once per aggregation call and not modified afterwards.
type GroupSummary struct {
	GroupKey string          // Column the records were grouped by
	ValueKey string          // Column the mean was computed over
	Means    map[string]int64
}

// GroupStat is one row of an ordered summary rendering.
type GroupStat struct {
	Group string
	Mean  int64
}

// Sorted returns the summary rows ordered by mean descending, ties broken by
// group name ascending, so repeated runs render identically.
func (s GroupSummary) Sorted() []GroupStat {
	stats := make([]GroupStat, 0, len(s.Means))
	for group, mean := range s.Means {
		stats = append(stats, GroupStat{Group: group, Mean: mean})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Mean != stats[j].Mean {
			return stats[i].Mean > stats[j].Mean
		}
		return stats[i].Group < stats[j].Group
	})
	return stats
}

// SummaryTable combines the means of several value columns over one shared
// group selection. Every group appears in every column: the group set is
// fixed before any means are computed.
type SummaryTable struct {
	GroupKey  string
	ValueKeys []string
	Rows      []SummaryRow
}

// SummaryRow holds the means for a single group, ordered as ValueKeys.
type SummaryRow struct {
	Group string
	Means []int64
}

// DamageSummary compares mean prices of listings with and without unrepaired
// damage.
type DamageSummary struct {
	DamagedMeanPrice   int64
	UndamagedMeanPrice int64
	DamagedCount       int
	UndamagedCount     int
}
