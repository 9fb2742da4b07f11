// pkg/source/factory.go
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/config"
)

// NewSource creates the ingestion source selected by the configuration.
func NewSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Source, error) {
	switch cfg.Source {
	case config.SourceCSV:
		return NewCSVSource(cfg.CSVPath, logger), nil
	case config.SourcePostgres:
		return NewPostgresSource(ctx, cfg.Postgres, logger)
	case config.SourceSnowflake:
		return NewSnowflakeSource(ctx, cfg.Snowflake, logger)
	default:
		return nil, fmt.Errorf("unknown source kind: %s", cfg.Source)
	}
}
