// pkg/cleaner/coercer.go
package cleaner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// MalformedValueError reports a text-numeric field that could not be parsed
// after stripping known decorative tokens. It identifies the field, the raw
// value, and the row so the caller can decide skip-vs-abort.
type MalformedValueError struct {
	Field string
	RowID string
	Raw   string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed value %q in field %q (row %s)", e.Raw, e.Field, e.RowID)
}

// CoercionSpec configures the conversion of one text-numeric column.
type CoercionSpec struct {
	// Column is the canonical name of the column to coerce.
	Column string `yaml:"column"`

	// Strip lists the unit/currency tokens and grouping separators removed
	// before parsing (e.g. "$", "km", ",").
	Strip []string `yaml:"strip"`

	// RenameTo, when set, renames the coerced column so its unit is
	// explicit downstream (e.g. "odometer" becomes "odometer_km").
	RenameTo string `yaml:"rename_to,omitempty"`
}

// Coercer converts designated text-numeric columns into int64 values.
type Coercer struct {
	specs  []CoercionSpec
	logger *zap.Logger
}

// NewCoercer creates a Coercer for the given column specs.
func NewCoercer(specs []CoercionSpec, logger *zap.Logger) *Coercer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coercer{
		specs:  specs,
		logger: logger.Named("coercer"),
	}
}

// CoerceRecord converts every configured column of a single record. The input
// record is not modified. On the first unparseable value it returns a
// *MalformedValueError; recovery policy belongs to the caller.
func (c *Coercer) CoerceRecord(rec model.Record) (model.Record, []model.CleaningOperation, error) {
	out := rec.Clone()
	var ops []model.CleaningOperation

	for _, spec := range c.specs {
		v, ok := out.Fields[spec.Column]
		if !ok {
			continue
		}

		// Already numeric: nothing to parse.
		if n, isInt := v.(int64); isInt {
			c.applyRename(&out, spec, n)
			continue
		}

		raw := ""
		if v != nil {
			raw = fmt.Sprintf("%v", v)
		}
		n, err := parseStripped(raw, spec.Strip)
		if err != nil {
			return model.Record{}, nil, &MalformedValueError{
				Field: spec.Column,
				RowID: rec.ID,
				Raw:   raw,
			}
		}

		out.Fields[spec.Column] = n
		ops = append(ops, model.CleaningOperation{
			Operation:     model.OpValueCoerced,
			ColumnName:    spec.Column,
			OriginalValue: raw,
			NewValue:      strconv.FormatInt(n, 10),
			RowIdentifier: rec.ID,
			Reason:        "text_numeric_field",
			CleanedAt:     time.Now(),
		})
		c.applyRename(&out, spec, n)
	}

	return out, ops, nil
}

// Coerce converts every configured column of the whole record set, renaming
// coerced columns to their unit-bearing names. It aborts on the first
// malformed value; callers wanting skip semantics use CoerceRecord.
func (c *Coercer) Coerce(rs model.RecordSet) (model.RecordSet, []model.CleaningOperation, error) {
	out := model.RecordSet{
		Columns: append([]string(nil), rs.Columns...),
		Records: make([]model.Record, 0, len(rs.Records)),
	}
	var ops []model.CleaningOperation

	for _, rec := range rs.Records {
		coerced, recOps, err := c.CoerceRecord(rec)
		if err != nil {
			return model.RecordSet{}, nil, err
		}
		out.Records = append(out.Records, coerced)
		ops = append(ops, recOps...)
	}

	c.RenameColumns(&out)
	c.logger.Info("Coerced numeric fields",
		zap.Int("rows", len(out.Records)),
		zap.Int("operations", len(ops)))
	return out, ops, nil
}

// RenameColumns applies the unit-bearing column renames to the set's declared
// column list. Per-record fields are renamed during coercion.
func (c *Coercer) RenameColumns(rs *model.RecordSet) {
	for _, spec := range c.specs {
		if spec.RenameTo == "" || spec.RenameTo == spec.Column {
			continue
		}
		for i, col := range rs.Columns {
			if col == spec.Column {
				rs.Columns[i] = spec.RenameTo
				break
			}
		}
	}
}

// applyRename moves a coerced value to its unit-bearing field name within a
// single record.
func (c *Coercer) applyRename(rec *model.Record, spec CoercionSpec, n int64) {
	if spec.RenameTo == "" || spec.RenameTo == spec.Column {
		return
	}
	rec.Fields[spec.RenameTo] = n
	delete(rec.Fields, spec.Column)
}

// parseStripped removes the configured tokens from a raw value and parses the
// remainder as a base-10 integer.
func parseStripped(raw string, strip []string) (int64, error) {
	cleaned := strings.TrimSpace(raw)
	for _, token := range strip {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty after stripping")
	}
	return strconv.ParseInt(cleaned, 10, 64)
}

// Normalize re-renders a coerced value as its canonical normalized raw form:
// the bare integer literal with all unit tokens and separators removed.
func Normalize(n int64) string {
	return strconv.FormatInt(n, 10)
}
