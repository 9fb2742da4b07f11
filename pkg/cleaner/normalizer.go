// pkg/cleaner/normalizer.go
package cleaner

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// NormalizeRules configures the schema normalization stage.
type NormalizeRules struct {
	// Rename is a fixed, injective mapping from raw column names to
	// canonical names. Raw columns absent from the record set are left
	// unrenamed.
	Rename map[string]string `yaml:"rename"`

	// Drop lists columns flagged low-value regardless of content.
	// Dropping a column that does not exist is a no-op.
	Drop []string `yaml:"drop"`

	// DropConstant removes any column whose value is identical across
	// 100% of records.
	DropConstant bool `yaml:"drop_constant"`

	// Relabel maps, per column, raw categorical values to canonical ones
	// (e.g. the German yes/no domain to English).
	Relabel map[string]map[string]string `yaml:"relabel"`
}

// Normalizer renames raw columns into the canonical schema, drops
// low-information columns, and relabels categorical values. Normalization
// performs no numeric conversion and cannot fail.
type Normalizer struct {
	rules  NormalizeRules
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer with the given rules.
func NewNormalizer(rules NormalizeRules, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		rules:  rules,
		logger: logger.Named("normalizer"),
	}
}

// Normalize returns a copy of the record set with canonical column names and
// low-information columns removed, plus the cleaning operations performed.
func (n *Normalizer) Normalize(rs model.RecordSet) (model.RecordSet, []model.CleaningOperation) {
	out := rs.Clone()
	var ops []model.CleaningOperation

	for _, raw := range sortedKeys(n.rules.Rename) {
		canonical := n.rules.Rename[raw]
		if !out.HasColumn(raw) {
			continue
		}
		out.RenameColumn(raw, canonical)
		ops = append(ops, model.CleaningOperation{
			Operation:     model.OpColumnRenamed,
			ColumnName:    raw,
			OriginalValue: raw,
			NewValue:      canonical,
			Reason:        "canonical_schema",
			CleanedAt:     time.Now(),
		})
	}

	dropped := make(map[string]bool)
	for _, col := range n.rules.Drop {
		if !out.HasColumn(col) || dropped[col] {
			continue
		}
		out.DropColumn(col)
		dropped[col] = true
		ops = append(ops, model.CleaningOperation{
			Operation:  model.OpColumnDropped,
			ColumnName: col,
			Reason:     "configured_low_value",
			CleanedAt:  time.Now(),
		})
	}

	if n.rules.DropConstant {
		for _, col := range constantColumns(out) {
			out.DropColumn(col)
			ops = append(ops, model.CleaningOperation{
				Operation:  model.OpColumnDropped,
				ColumnName: col,
				Reason:     "constant_column",
				CleanedAt:  time.Now(),
			})
		}
	}

	for _, col := range sortedKeys(n.rules.Relabel) {
		if !out.HasColumn(col) {
			continue
		}
		relabeled := n.relabelColumn(&out, col, n.rules.Relabel[col])
		ops = append(ops, relabeled...)
	}

	n.logger.Info("Normalized schema",
		zap.Int("columns", len(out.Columns)),
		zap.Int("operations", len(ops)))

	return out, ops
}

// relabelColumn rewrites a column's categorical values through a mapping.
// Values without a mapping entry pass through untouched.
func (n *Normalizer) relabelColumn(
	rs *model.RecordSet,
	col string,
	mapping map[string]string,
) []model.CleaningOperation {
	var ops []model.CleaningOperation
	for i := range rs.Records {
		raw, ok := rs.Records[i].String(col)
		if !ok {
			continue
		}
		canonical, mapped := mapping[raw]
		if !mapped || canonical == raw {
			continue
		}
		rs.Records[i].Fields[col] = canonical
		ops = append(ops, model.CleaningOperation{
			Operation:     model.OpValueRelabeled,
			ColumnName:    col,
			OriginalValue: raw,
			NewValue:      canonical,
			RowIdentifier: rs.Records[i].ID,
			Reason:        "canonical_value_domain",
			CleanedAt:     time.Now(),
		})
	}
	return ops
}

// constantColumns returns the columns whose value is identical across every
// record. An empty record set has no constant columns.
func constantColumns(rs model.RecordSet) []string {
	if len(rs.Records) == 0 {
		return nil
	}

	var constant []string
	for _, col := range rs.Columns {
		first := valueKey(rs.Records[0].Fields[col])
		uniform := true
		for _, rec := range rs.Records[1:] {
			if valueKey(rec.Fields[col]) != first {
				uniform = false
				break
			}
		}
		if uniform {
			constant = append(constant, col)
		}
	}
	return constant
}

// sortedKeys returns a map's keys in ascending order so rule application is
// deterministic run to run.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valueKey produces a comparable representation of a field value, keeping
// nil distinct from the empty string.
func valueKey(v interface{}) string {
	if v == nil {
		return "\x00null"
	}
	return fmt.Sprintf("%T:%v", v, v)
}
