// pkg/analysis/frequency.go
package analysis

import (
	"sort"

	"go.uber.org/zap"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// compositeKey identifies an ordered pair of categorical values. A null
// second value is part of the identity, not folded into the empty string.
type compositeKey struct {
	first      string
	second     string
	secondNull bool
}

// FrequencyCounter builds a ranked frequency table over a composite key
// formed from two categorical columns.
type FrequencyCounter struct {
	logger *zap.Logger
}

// NewFrequencyCounter creates a FrequencyCounter.
func NewFrequencyCounter(logger *zap.Logger) *FrequencyCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrequencyCounter{logger: logger.Named("frequency")}
}

// Count builds the frequency table for the ordered (firstKey, secondKey)
// pair in one pass. Records with a null first value are skipped; a null
// second value counts as a distinct key. Entries are ordered by count
// descending, ties in first-encountered input order.
func (c *FrequencyCounter) Count(rs model.RecordSet, firstKey, secondKey string) (*model.FrequencyTable, error) {
	if !rs.HasColumn(firstKey) {
		return nil, &UnknownFieldError{Field: firstKey}
	}
	if !rs.HasColumn(secondKey) {
		return nil, &UnknownFieldError{Field: secondKey}
	}

	counts := make(map[compositeKey]int)
	order := make([]compositeKey, 0)
	for _, rec := range rs.Records {
		first, ok := rec.String(firstKey)
		if !ok {
			continue
		}
		second, hasSecond := rec.String(secondKey)
		key := compositeKey{first: first, second: second, secondNull: !hasSecond}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	// Entries start in first-encountered order; the stable sort keeps that
	// order for equal counts.
	entries := make([]model.PairCount, len(order))
	for i, key := range order {
		entries[i] = model.PairCount{
			First:      key.first,
			Second:     key.second,
			SecondNull: key.secondNull,
			Count:      counts[key],
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	c.logger.Debug("Built frequency table",
		zap.String("first_key", firstKey),
		zap.String("second_key", secondKey),
		zap.Int("distinct_keys", len(entries)))

	return &model.FrequencyTable{
		FirstKey:  firstKey,
		SecondKey: secondKey,
		Entries:   entries,
	}, nil
}
