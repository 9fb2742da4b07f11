// pkg/model/cleaning.go
package model

import "time"

// Cleaning operation kinds recorded by the pipeline stages.
const (
	OpColumnRenamed  = "column_renamed"
	OpColumnDropped  = "column_dropped"
	OpValueRelabeled = "value_relabeled"
	OpValueCoerced   = "value_coerced"
	OpRowFiltered    = "row_filtered"
)

// CleaningOperation represents a single mutation performed while cleaning the
// record set. Operations are collected in memory for observability and
// logging; they are never persisted.
type CleaningOperation struct {
	Operation     string      // Kind of cleaning performed (e.g. "value_coerced")
	ColumnName    string      // Column that was affected
	OriginalValue interface{} // Original value (may be nil)
	NewValue      string      // Value or name after cleaning
	RowIdentifier string      // ID of the affected row; empty for column-level operations
	Reason        string      // Why the operation was applied (e.g. "constant_column")
	CleanedAt     time.Time   // When the operation occurred
}
