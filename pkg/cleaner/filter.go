// pkg/cleaner/filter.go
package cleaner

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// defaultJumpFactor is the consecutive-value ratio above which the sorted
// price tail is considered discontinuous.
const defaultJumpFactor = 2.0

// FilterRule declares a closed interval of valid values for one numeric
// column. Records whose value is missing, non-numeric, or outside [Min, Max]
// are removed.
type FilterRule struct {
	Column string `yaml:"column"`
	Min    int64  `yaml:"min"`
	Max    int64  `yaml:"max"`

	// DetectMax derives the upper bound from the data instead of Max: the
	// sorted tail of the column is scanned for the point where values stop
	// growing gradually and jump discontinuously.
	DetectMax bool `yaml:"detect_max,omitempty"`

	// JumpFactor overrides the discontinuity ratio used by DetectMax.
	// Zero means the default of 2.0.
	JumpFactor float64 `yaml:"jump_factor,omitempty"`
}

// FilterResult is the outcome of one filtering pass.
type FilterResult struct {
	Kept          model.RecordSet
	Total         int              // Rows examined
	RemovedByRule map[string]int   // Column -> rows removed by that rule
	Bounds        map[string][2]int64 // Column -> effective [min, max] applied
}

// Removed returns the total number of rows removed.
func (r FilterResult) Removed() int {
	removed := 0
	for _, n := range r.RemovedByRule {
		removed += n
	}
	return removed
}

// RemovedFraction returns the fraction of the original record set removed by
// one rule. Counts are tracked incrementally during the single filtering
// pass, so no second pass over the data is needed.
func (r FilterResult) RemovedFraction(column string) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.RemovedByRule[column]) / float64(r.Total)
}

// RangeFilter removes records whose coerced numeric fields fall outside
// domain-valid closed intervals.
type RangeFilter struct {
	rules  []FilterRule
	logger *zap.Logger
}

// NewRangeFilter creates a RangeFilter for the given rules.
func NewRangeFilter(rules []FilterRule, logger *zap.Logger) *RangeFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RangeFilter{
		rules:  rules,
		logger: logger.Named("filter"),
	}
}

// Apply returns the subset of records whose values lie within every rule's
// interval, with per-rule removal counts. A removed row is attributed to the
// first rule that rejects it.
func (f *RangeFilter) Apply(rs model.RecordSet) FilterResult {
	result := FilterResult{
		Kept: model.RecordSet{
			Columns: append([]string(nil), rs.Columns...),
			Records: make([]model.Record, 0, len(rs.Records)),
		},
		Total:         len(rs.Records),
		RemovedByRule: make(map[string]int),
		Bounds:        make(map[string][2]int64),
	}

	bounds := make([]int64, len(f.rules))
	for i, rule := range f.rules {
		max := rule.Max
		if rule.DetectMax {
			max = DetectCeiling(columnValues(rs, rule.Column), rule.JumpFactor)
		}
		bounds[i] = max
		result.Bounds[rule.Column] = [2]int64{rule.Min, max}
	}

	for _, rec := range rs.Records {
		removed := false
		for i, rule := range f.rules {
			v, ok := rec.Int(rule.Column)
			if !ok || v < rule.Min || v > bounds[i] {
				result.RemovedByRule[rule.Column]++
				removed = true
				break
			}
		}
		if !removed {
			result.Kept.Records = append(result.Kept.Records, rec)
		}
	}

	for _, rule := range f.rules {
		f.logger.Info("Applied range filter",
			zap.String("column", rule.Column),
			zap.Int64("min", result.Bounds[rule.Column][0]),
			zap.Int64("max", result.Bounds[rule.Column][1]),
			zap.Int("removed", result.RemovedByRule[rule.Column]),
			zap.Float64("removed_fraction", result.RemovedFraction(rule.Column)))
	}

	return result
}

// DetectCeiling finds the largest plausible value of a distribution by
// locating the discontinuity in its sorted tail. The distinct values are
// walked from the top; a pair whose upper value sits more than jumpFactor
// times above its lower neighbor is a jump, and the ceiling is the lower
// value of the deepest jump above the distribution's median. The prices of
// the reference dataset increase steadily up to the ceiling and then leap to
// sentinel-like magnitudes, which is the shape this exploits. The median
// anchor keeps the jumps that naturally occur among small sparse values from
// dragging the ceiling down.
func DetectCeiling(values []int64, jumpFactor float64) int64 {
	if jumpFactor <= 1 {
		jumpFactor = defaultJumpFactor
	}
	if len(values) == 0 {
		return 0
	}

	distinct := distinctSortedDesc(values)
	ceiling := distinct[0]
	if len(distinct) == 1 {
		return ceiling
	}

	med := median(values)
	for i := 0; i < len(distinct)-1; i++ {
		hi, lo := distinct[i], distinct[i+1]
		if lo <= 0 || lo < med {
			break
		}
		if float64(hi) > jumpFactor*float64(lo) {
			ceiling = lo
		}
	}
	return ceiling
}

// median returns the middle element of the values (upper middle for even
// counts).
func median(values []int64) int64 {
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}

// columnValues collects the numeric values of one column, skipping rows where
// it is missing or non-numeric.
func columnValues(rs model.RecordSet, column string) []int64 {
	values := make([]int64, 0, len(rs.Records))
	for _, rec := range rs.Records {
		if v, ok := rec.Int(column); ok {
			values = append(values, v)
		}
	}
	return values
}

// distinctSortedDesc returns the distinct values sorted descending.
func distinctSortedDesc(values []int64) []int64 {
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	distinct := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
		}
	}
	return distinct
}
