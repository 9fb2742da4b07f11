// pkg/analysis/aggregator.go
package analysis

import (
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// DefaultMinGroupFrequency is the share of the record set a group must reach
// to be considered in summaries.
const DefaultMinGroupFrequency = 0.03

// GroupSet is a deterministic selection of qualifying group values, computed
// once from a frequency census and reusable across value columns so that
// summaries over different fields stay keyed identically.
type GroupSet struct {
	Key    string
	Groups []string       // Qualifying values, frequency descending
	counts map[string]int // Census counts, all values
	total  int
}

// Share returns the fraction of the censused record set a group accounts for.
func (gs *GroupSet) Share(group string) float64 {
	if gs.total == 0 {
		return 0
	}
	return float64(gs.counts[group]) / float64(gs.total)
}

// Aggregator computes grouped summary statistics over a cleaned, filtered
// record set. It holds no state beyond the records it was given and can be
// discarded after the queries that used it.
type Aggregator struct {
	records model.RecordSet
	logger  *zap.Logger
}

// NewAggregator creates an Aggregator over the given record set.
func NewAggregator(records model.RecordSet, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		records: records,
		logger:  logger.Named("aggregator"),
	}
}

// QualifyingGroups runs a frequency census of groupKey over the entire record
// set and returns the group values whose share is at least minFrequency.
// Records where the group field is null are not counted. The census covers
// every record, never a top-N cut: a group at the threshold is always
// included, one below it always excluded.
func (a *Aggregator) QualifyingGroups(groupKey string, minFrequency float64) (*GroupSet, error) {
	if !a.records.HasColumn(groupKey) {
		return nil, &UnknownFieldError{Field: groupKey}
	}

	counts := make(map[string]int)
	total := 0
	order := make([]string, 0)
	for _, rec := range a.records.Records {
		v, ok := rec.String(groupKey)
		if !ok {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
		total++
	}

	gs := &GroupSet{Key: groupKey, counts: counts, total: total}
	for _, group := range order {
		if gs.Share(group) >= minFrequency {
			gs.Groups = append(gs.Groups, group)
		}
	}
	// Frequency descending, name ascending on ties: stable regardless of
	// input order.
	sort.Slice(gs.Groups, func(i, j int) bool {
		ci, cj := counts[gs.Groups[i]], counts[gs.Groups[j]]
		if ci != cj {
			return ci > cj
		}
		return gs.Groups[i] < gs.Groups[j]
	})

	a.logger.Debug("Computed group census",
		zap.String("group_key", groupKey),
		zap.Int("distinct_groups", len(counts)),
		zap.Int("qualifying_groups", len(gs.Groups)),
		zap.Float64("min_frequency", minFrequency))

	return gs, nil
}

// Mean computes the arithmetic mean of valueKey for every group in the set,
// truncated toward zero to an integer. The truncation mirrors the reference
// analysis and is kept for output parity. Each group's mean is independent,
// so groups are computed concurrently and merged into one mapping; the group
// selection and ordering rules are unaffected.
func (a *Aggregator) Mean(gs *GroupSet, valueKey string) (model.GroupSummary, error) {
	if !a.records.HasColumn(valueKey) {
		return model.GroupSummary{}, &UnknownFieldError{Field: valueKey}
	}

	sums := make(map[string]int64, len(gs.Groups))
	ns := make(map[string]int, len(gs.Groups))
	member := make(map[string]bool, len(gs.Groups))
	for _, g := range gs.Groups {
		member[g] = true
	}
	for _, rec := range a.records.Records {
		g, ok := rec.String(gs.Key)
		if !ok || !member[g] {
			continue
		}
		if v, ok := rec.Int(valueKey); ok {
			sums[g] += v
			ns[g]++
		}
	}

	means := make([]int64, len(gs.Groups))
	var eg errgroup.Group
	for i, group := range gs.Groups {
		i, group := i, group
		eg.Go(func() error {
			n := ns[group]
			if n == 0 {
				return &EmptyGroupError{Group: group, Field: valueKey}
			}
			means[i] = int64(float64(sums[group]) / float64(n))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return model.GroupSummary{}, err
	}

	summary := model.GroupSummary{
		GroupKey: gs.Key,
		ValueKey: valueKey,
		Means:    make(map[string]int64, len(gs.Groups)),
	}
	for i, group := range gs.Groups {
		summary.Means[group] = means[i]
	}

	a.logger.Debug("Computed group means",
		zap.String("group_key", gs.Key),
		zap.String("value_key", valueKey),
		zap.Int("groups", len(summary.Means)))

	return summary, nil
}

// Aggregate is the single-call form: census of groupKey, then truncated means
// of valueKey for the qualifying groups.
func (a *Aggregator) Aggregate(groupKey, valueKey string, minFrequency float64) (model.GroupSummary, error) {
	gs, err := a.QualifyingGroups(groupKey, minFrequency)
	if err != nil {
		return model.GroupSummary{}, err
	}
	return a.Mean(gs, valueKey)
}

// SummaryTable computes the means of several value columns against one shared
// group selection. Every qualifying group appears in every column; rows are
// ordered by group frequency descending.
func (a *Aggregator) SummaryTable(groupKey string, valueKeys []string, minFrequency float64) (*model.SummaryTable, error) {
	gs, err := a.QualifyingGroups(groupKey, minFrequency)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.GroupSummary, len(valueKeys))
	for i, valueKey := range valueKeys {
		summaries[i], err = a.Mean(gs, valueKey)
		if err != nil {
			return nil, err
		}
	}

	table := &model.SummaryTable{
		GroupKey:  groupKey,
		ValueKeys: append([]string(nil), valueKeys...),
		Rows:      make([]model.SummaryRow, len(gs.Groups)),
	}
	for i, group := range gs.Groups {
		row := model.SummaryRow{Group: group, Means: make([]int64, len(valueKeys))}
		for j := range valueKeys {
			row.Means[j] = summaries[j].Means[group]
		}
		table.Rows[i] = row
	}
	return table, nil
}

// CompareDamage partitions the record set on the unrepaired_damage field and
// returns mean prices for the damaged ("yes") and undamaged ("no") listings.
func (a *Aggregator) CompareDamage() (model.DamageSummary, error) {
	if !a.records.HasColumn(model.FieldUnrepairedDamage) {
		return model.DamageSummary{}, &UnknownFieldError{Field: model.FieldUnrepairedDamage}
	}
	if !a.records.HasColumn(model.FieldPrice) {
		return model.DamageSummary{}, &UnknownFieldError{Field: model.FieldPrice}
	}

	var sums [2]int64
	var ns [2]int
	for _, rec := range a.records.Records {
		damage, ok := rec.String(model.FieldUnrepairedDamage)
		if !ok {
			continue
		}
		var idx int
		switch damage {
		case "yes":
			idx = 0
		case "no":
			idx = 1
		default:
			continue
		}
		if price, ok := rec.Int(model.FieldPrice); ok {
			sums[idx] += price
			ns[idx]++
		}
	}

	if ns[0] == 0 {
		return model.DamageSummary{}, &EmptyGroupError{Group: "yes", Field: model.FieldPrice}
	}
	if ns[1] == 0 {
		return model.DamageSummary{}, &EmptyGroupError{Group: "no", Field: model.FieldPrice}
	}

	return model.DamageSummary{
		DamagedMeanPrice:   int64(float64(sums[0]) / float64(ns[0])),
		UndamagedMeanPrice: int64(float64(sums[1]) / float64(ns[1])),
		DamagedCount:       ns[0],
		UndamagedCount:     ns[1],
	}, nil
}
