// pkg/source/snowflake.go
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/config"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// SnowflakeSource reads raw listings from a warehouse-hosted copy of the
// dataset.
type SnowflakeSource struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeSource creates and validates a Snowflake-backed listings source.
func NewSnowflakeSource(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("snowflake-source")

	// Create DSN using Snowflake's DSN builder
	sfConfig := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.String("warehouse", cfg.Warehouse))

	dsn, err := sf.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	return &SnowflakeSource{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// Name identifies the source for logging
func (s *SnowflakeSource) Name() string {
	return fmt.Sprintf("snowflake:%s.%s.%s", s.cfg.Database, s.cfg.Schema, s.cfg.Table)
}

// Fetch reads every listing row from the configured table.
func (s *SnowflakeSource) Fetch(ctx context.Context) (model.RecordSet, error) {
	queryCtx := ctx
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s", s.cfg.Schema, s.cfg.Table)
	rows, err := s.db.QueryContext(queryCtx, query)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to query listings table %s: %w", s.cfg.Table, err)
	}
	defer rows.Close()

	rs, err := scanRows(rows)
	if err != nil {
		return model.RecordSet{}, err
	}

	s.logger.Info("Fetched listings from Snowflake",
		zap.String("table", s.cfg.Table),
		zap.Int("rows", rs.Len()))
	return rs, nil
}

// Close closes the database connection
func (s *SnowflakeSource) Close() error {
	s.logger.Info("Closing Snowflake connection")
	return s.db.Close()
}
