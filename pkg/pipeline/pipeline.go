// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/cleaner"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// Policy decides how the pipeline reacts to a malformed value during
// coercion. The coercer only surfaces the error; the recovery decision is
// made here, on behalf of the caller.
type Policy int

const (
	// PolicyAbort stops the run on the first malformed value.
	PolicyAbort Policy = iota
	// PolicySkipRow drops the offending record, logs it, and continues.
	PolicySkipRow
)

// String returns a string representation of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicySkipRow:
		return "skip_row"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// Rules bundles the stage configurations for one pipeline.
type Rules struct {
	Normalize cleaner.NormalizeRules `yaml:"normalize"`
	Coerce    []cleaner.CoercionSpec `yaml:"coerce"`
	Filters   []cleaner.FilterRule   `yaml:"filters"`
}

// Result is the outcome of a completed run: the cleaned, filtered record set
// plus everything observed along the way. Partial results are never returned
// on failure.
type Result struct {
	Records    model.RecordSet
	Operations []model.CleaningOperation
	Metrics    *RunMetrics
}

// Pipeline chains the cleaning stages: schema normalization, field coercion,
// and range filtering, in that order. Each stage is a pure function from an
// input record set to an output record set; the pipeline owns no state across
// runs.
type Pipeline struct {
	normalizer *cleaner.Normalizer
	coercer    *cleaner.Coercer
	filter     *cleaner.RangeFilter
	policy     Policy
	logger     *zap.Logger
}

// New creates a Pipeline from the given rules and coercion policy.
func New(rules Rules, policy Policy, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("pipeline")
	return &Pipeline{
		normalizer: cleaner.NewNormalizer(rules.Normalize, logger),
		coercer:    cleaner.NewCoercer(rules.Coerce, logger),
		filter:     cleaner.NewRangeFilter(rules.Filters, logger),
		policy:     policy,
		logger:     logger,
	}
}

// Run executes the full cleaning pass over a raw record set. On failure the
// typed error describes exactly which record and field caused it, and no
// partial record set is returned.
func (p *Pipeline) Run(ctx context.Context, raw model.RecordSet) (*Result, error) {
	metrics := NewRunMetrics()
	metrics.RowsIn = raw.Len()

	p.logger.Info("Starting pipeline run",
		zap.String("run_id", metrics.RunID),
		zap.Int("rows", raw.Len()),
		zap.String("policy", p.policy.String()))

	normalized, ops := p.normalizer.Normalize(raw)

	coerced, coerceOps, err := p.coerceAll(ctx, normalized, metrics)
	if err != nil {
		return nil, err
	}
	ops = append(ops, coerceOps...)

	filtered := p.filter.Apply(coerced)
	for column, removed := range filtered.RemovedByRule {
		metrics.RemovedByRule[column] = removed
	}
	for column, bounds := range filtered.Bounds {
		metrics.FilterBounds[column] = bounds
	}

	metrics.RowsOut = filtered.Kept.Len()
	metrics.CleaningOperations = len(ops)
	metrics.EndTime = time.Now()
	metrics.LogSummary(p.logger)

	return &Result{
		Records:    filtered.Kept,
		Operations: ops,
		Metrics:    metrics,
	}, nil
}

// coerceAll applies the coercer record by record so the configured policy can
// decide what a malformed value means for the run.
func (p *Pipeline) coerceAll(
	ctx context.Context,
	rs model.RecordSet,
	metrics *RunMetrics,
) (model.RecordSet, []model.CleaningOperation, error) {
	out := model.RecordSet{
		Columns: append([]string(nil), rs.Columns...),
		Records: make([]model.Record, 0, len(rs.Records)),
	}
	var ops []model.CleaningOperation

	for _, rec := range rs.Records {
		if err := ctx.Err(); err != nil {
			return model.RecordSet{}, nil, err
		}

		coerced, recOps, err := p.coercer.CoerceRecord(rec)
		if err != nil {
			var malformed *cleaner.MalformedValueError
			if !errors.As(err, &malformed) {
				return model.RecordSet{}, nil, err
			}
			metrics.RecordCoercionFailure(malformed)
			if p.policy == PolicyAbort {
				return model.RecordSet{}, nil, fmt.Errorf("coercion failed: %w", malformed)
			}
			metrics.RowsSkipped++
			p.logger.Warn("Skipping record with malformed value",
				zap.String("row_id", malformed.RowID),
				zap.String("field", malformed.Field),
				zap.String("raw", malformed.Raw))
			continue
		}
		out.Records = append(out.Records, coerced)
		ops = append(ops, recOps...)
	}

	p.coercer.RenameColumns(&out)
	return out, ops, nil
}
