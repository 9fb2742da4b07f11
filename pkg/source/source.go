// pkg/source/source.go
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// Source supplies a raw record set for one pipeline run. Implementations own
// any underlying connection and release it on Close.
type Source interface {
	// Name identifies the source for logging
	Name() string

	// Fetch reads the entire raw record set into memory
	Fetch(ctx context.Context) (model.RecordSet, error)

	// Close releases resources held by the source
	Close() error
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

// scanRows converts a generic SQL result into a record set, assigning each
// row a fresh identifier. Byte slices become strings; NULLs stay nil.
func scanRows(rows *sql.Rows) (model.RecordSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to read result columns: %w", err)
	}

	rs := model.RecordSet{Columns: append([]string(nil), columns...)}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return model.RecordSet{}, fmt.Errorf("failed to scan row: %w", err)
		}

		fields := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				fields[col] = string(v)
			default:
				fields[col] = v
			}
		}
		rs.Records = append(rs.Records, model.Record{
			ID:     uuid.New().String(),
			Fields: fields,
		})
	}
	if err := rows.Err(); err != nil {
		return model.RecordSet{}, fmt.Errorf("error iterating rows: %w", err)
	}

	return rs, nil
}
