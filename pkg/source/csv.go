// pkg/source/csv.go
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// CSVSource reads raw listings from a classifieds CSV export. The reference
// export is Latin-1 encoded, so the file is decoded through ISO 8859-1 before
// parsing.
type CSVSource struct {
	path   string
	logger *zap.Logger
}

// NewCSVSource creates a CSV source for the given file path.
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSource{
		path:   path,
		logger: logger.Named("csv-source"),
	}
}

// Name identifies the source for logging
func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

// Fetch reads the whole file into a record set. Each row gets a fresh
// identifier; empty cells become nil values.
func (s *CSVSource) Fetch(ctx context.Context) (model.RecordSet, error) {
	s.logger.Info("Reading listings export", zap.String("path", s.path))

	file, err := os.Open(s.path)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to open listings export: %w", err)
	}
	defer file.Close()

	rs, err := readRecords(ctx, charmap.ISO8859_1.NewDecoder().Reader(file))
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	s.logger.Info("Read listings export",
		zap.Int("rows", rs.Len()),
		zap.Int("columns", len(rs.Columns)))
	return rs, nil
}

// Close releases resources held by the source. The CSV source holds none
// between fetches.
func (s *CSVSource) Close() error {
	return nil
}

// readRecords parses CSV content whose first row is the header.
func readRecords(ctx context.Context, r io.Reader) (model.RecordSet, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return model.RecordSet{}, fmt.Errorf("export is empty")
	}
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to read header: %w", err)
	}

	rs := model.RecordSet{Columns: append([]string(nil), header...)}
	for {
		if err := ctx.Err(); err != nil {
			return model.RecordSet{}, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.RecordSet{}, fmt.Errorf("failed to read row: %w", err)
		}

		fields := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i >= len(row) || row[i] == "" {
				fields[col] = nil
				continue
			}
			fields[col] = row[i]
		}
		rs.Records = append(rs.Records, model.Record{
			ID:     uuid.New().String(),
			Fields: fields,
		})
	}

	return rs, nil
}
