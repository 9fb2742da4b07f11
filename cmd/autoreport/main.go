// cmd/autoreport/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/analysis"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/config"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/pipeline"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/source"
)

func main() {
	// Load .env if present; real environments configure directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("Run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return err
	}

	src, err := source.NewSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	raw, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("ingestion from %s failed: %w", src.Name(), err)
	}

	policy := pipeline.PolicyAbort
	if cfg.CoercionPolicy == "skip" {
		policy = pipeline.PolicySkipRow
	}

	result, err := pipeline.New(rules, policy, logger).Run(ctx, raw)
	if err != nil {
		return err
	}

	agg := analysis.NewAggregator(result.Records, logger)

	brandTable, err := agg.SummaryTable(
		model.FieldBrand,
		[]string{model.FieldPrice, model.FieldOdometerKm},
		cfg.MinGroupFrequency,
	)
	if err != nil {
		return err
	}

	damage, err := agg.CompareDamage()
	if err != nil {
		return err
	}

	freq, err := analysis.NewFrequencyCounter(logger).Count(
		result.Records, model.FieldBrand, model.FieldModel)
	if err != nil {
		return err
	}

	report(os.Stdout, result, brandTable, damage, freq.TopK(cfg.TopModels))
	return nil
}

// report renders the analysis results as plain tables. Rendering lives here,
// outside the pipeline and analysis packages.
func report(
	out *os.File,
	result *pipeline.Result,
	brands *model.SummaryTable,
	damage model.DamageSummary,
	topModels []model.PairCount,
) {
	m := result.Metrics
	fmt.Fprintf(out, "Cleaned %d of %d listings (%d skipped, %d removed by range filters)\n\n",
		m.RowsOut, m.RowsIn, m.RowsSkipped, m.RowsIn-m.RowsOut-m.RowsSkipped)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BRAND\tMEAN PRICE\tMEAN ODOMETER (KM)")
	for _, row := range brands.Rows {
		fmt.Fprintf(w, "%s\t%d\t%d\n", row.Group, row.Means[0], row.Means[1])
	}
	w.Flush()

	fmt.Fprintf(out, "\nUndamaged mean price: %d (%d listings)\n",
		damage.UndamagedMeanPrice, damage.UndamagedCount)
	fmt.Fprintf(out, "Damaged mean price:   %d (%d listings)\n\n",
		damage.DamagedMeanPrice, damage.DamagedCount)

	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tMODEL\tLISTINGS")
	for i, entry := range topModels {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, entry.Label(), entry.Count)
	}
	w.Flush()
}

// newLogger builds the process logger in the configured level and format.
func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
