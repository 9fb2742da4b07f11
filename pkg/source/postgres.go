// pkg/source/postgres.go
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/config"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// PostgresSource reads raw listings from a PostgreSQL table.
type PostgresSource struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresSource creates and validates a PostgreSQL-backed listings source.
func NewPostgresSource(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres-source")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("table", cfg.Table))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &PostgresSource{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// Name identifies the source for logging
func (s *PostgresSource) Name() string {
	return fmt.Sprintf("postgres:%s/%s", s.cfg.Database, s.cfg.Table)
}

// Fetch reads every listing row from the configured table.
func (s *PostgresSource) Fetch(ctx context.Context) (model.RecordSet, error) {
	queryCtx := ctx
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	query := fmt.Sprintf("SELECT * FROM %s", s.cfg.Table)
	rows, err := s.db.QueryContext(queryCtx, query)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to query listings table %s: %w", s.cfg.Table, err)
	}
	defer rows.Close()

	rs, err := scanRows(rows)
	if err != nil {
		return model.RecordSet{}, err
	}

	s.logger.Info("Fetched listings from PostgreSQL",
		zap.String("table", s.cfg.Table),
		zap.Int("rows", rs.Len()))
	return rs, nil
}

// Close closes the database connection
func (s *PostgresSource) Close() error {
	s.logger.Info("Closing PostgreSQL connection")
	return s.db.Close()
}
