// pkg/pipeline/metrics.go
package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/cleaner"
)

// maxFailureSamples bounds how many malformed-value errors are kept verbatim
// for reporting.
const maxFailureSamples = 5

// RunMetrics tracks observability counters for one pipeline run. Counts are
// accumulated incrementally during the single pass over the data.
type RunMetrics struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	RowsIn           int
	RowsSkipped      int // Rows dropped by the skip-row coercion policy
	CoercionFailures int
	FailureSamples   []cleaner.MalformedValueError

	RemovedByRule map[string]int      // Filter column -> rows removed
	FilterBounds  map[string][2]int64 // Filter column -> effective [min, max]
	RowsOut       int

	CleaningOperations int
}

// NewRunMetrics creates a metrics tracker for a new run.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		RunID:         uuid.New().String(),
		StartTime:     time.Now(),
		RemovedByRule: make(map[string]int),
		FilterBounds:  make(map[string][2]int64),
	}
}

// RecordCoercionFailure counts a malformed value, keeping the first few as
// samples for the run report.
func (m *RunMetrics) RecordCoercionFailure(err *cleaner.MalformedValueError) {
	m.CoercionFailures++
	if len(m.FailureSamples) < maxFailureSamples {
		m.FailureSamples = append(m.FailureSamples, *err)
	}
}

// Duration returns how long the run took (so far, if still running).
func (m *RunMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// RemovedFraction returns the fraction of ingested rows one filter rule
// removed.
func (m *RunMetrics) RemovedFraction(column string) float64 {
	if m.RowsIn == 0 {
		return 0
	}
	return float64(m.RemovedByRule[column]) / float64(m.RowsIn)
}

// LogSummary emits the run counters through the logger.
func (m *RunMetrics) LogSummary(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("run_id", m.RunID),
		zap.Duration("duration", m.Duration()),
		zap.Int("rows_in", m.RowsIn),
		zap.Int("rows_out", m.RowsOut),
		zap.Int("rows_skipped", m.RowsSkipped),
		zap.Int("coercion_failures", m.CoercionFailures),
		zap.Int("cleaning_operations", m.CleaningOperations),
	}
	for column, removed := range m.RemovedByRule {
		fields = append(fields,
			zap.Int("removed_"+column, removed),
			zap.Float64("removed_fraction_"+column, m.RemovedFraction(column)))
	}
	logger.Info("Pipeline run complete", fields...)
}
