package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

func brandModelSet(pairs ...[2]interface{}) model.RecordSet {
	rs := model.RecordSet{Columns: []string{model.FieldBrand, model.FieldModel}}
	for i, p := range pairs {
		rs.Records = append(rs.Records, model.Record{
			ID: fmt.Sprintf("row-%d", i),
			Fields: map[string]interface{}{
				model.FieldBrand: p[0],
				model.FieldModel: p[1],
			},
		})
	}
	return rs
}

func TestFrequencyCount(t *testing.T) {
	rs := brandModelSet(
		[2]interface{}{"volkswagen", "golf"},
		[2]interface{}{"bmw", "3er"},
		[2]interface{}{"volkswagen", "golf"},
		[2]interface{}{"volkswagen", "polo"},
		[2]interface{}{"volkswagen", "golf"},
	)

	table, err := NewFrequencyCounter(nil).Count(rs, model.FieldBrand, model.FieldModel)
	require.NoError(t, err)

	require.Len(t, table.Entries, 3)
	assert.Equal(t, model.PairCount{First: "volkswagen", Second: "golf", Count: 3}, table.Entries[0])
	assert.Equal(t, 1, table.Entries[1].Count)
	assert.Equal(t, 1, table.Entries[2].Count)
}

func TestFrequencyCountNullHandling(t *testing.T) {
	rs := brandModelSet(
		[2]interface{}{"bmw", nil},
		[2]interface{}{"bmw", "3er"},
		[2]interface{}{"bmw", nil},
		[2]interface{}{nil, "golf"}, // null first value: skipped entirely
	)

	table, err := NewFrequencyCounter(nil).Count(rs, model.FieldBrand, model.FieldModel)
	require.NoError(t, err)

	require.Len(t, table.Entries, 2)
	top := table.Entries[0]
	assert.Equal(t, "bmw", top.First)
	assert.True(t, top.SecondNull, "a null model is its own key, not merged with any model")
	assert.Equal(t, 2, top.Count)
	assert.Equal(t, model.PairCount{First: "bmw", Second: "3er", Count: 1}, table.Entries[1])
}

func TestFrequencyCountTieBreakIsEncounterOrder(t *testing.T) {
	rs := brandModelSet(
		[2]interface{}{"opel", "corsa"},
		[2]interface{}{"audi", "a4"},
		[2]interface{}{"bmw", "3er"},
		[2]interface{}{"audi", "a4"},
		[2]interface{}{"opel", "corsa"},
		[2]interface{}{"bmw", "3er"},
	)
	counter := NewFrequencyCounter(nil)

	first, err := counter.Count(rs, model.FieldBrand, model.FieldModel)
	require.NoError(t, err)

	wantOrder := []string{"opel corsa", "audi a4", "bmw 3er"}
	for i, entry := range first.Entries {
		assert.Equal(t, wantOrder[i], entry.Label())
	}

	// Same input, same table, every time.
	for i := 0; i < 10; i++ {
		again, err := counter.Count(rs, model.FieldBrand, model.FieldModel)
		require.NoError(t, err)
		assert.Equal(t, first.Entries, again.Entries)
	}
}

func TestFrequencyCountUnknownField(t *testing.T) {
	rs := brandModelSet([2]interface{}{"bmw", "3er"})
	counter := NewFrequencyCounter(nil)

	_, err := counter.Count(rs, "no_such_column", model.FieldModel)
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_column", unknown.Field)

	_, err = counter.Count(rs, model.FieldBrand, "no_such_column")
	require.ErrorAs(t, err, &unknown)
}

func TestFrequencyTableTopK(t *testing.T) {
	rs := brandModelSet(
		[2]interface{}{"volkswagen", "golf"},
		[2]interface{}{"volkswagen", "golf"},
		[2]interface{}{"bmw", "3er"},
		[2]interface{}{"opel", "corsa"},
	)
	table, err := NewFrequencyCounter(nil).Count(rs, model.FieldBrand, model.FieldModel)
	require.NoError(t, err)

	top := table.TopK(2)
	require.Len(t, top, 2)
	assert.Equal(t, "volkswagen golf", top[0].Label())

	assert.Len(t, table.TopK(100), 3, "k larger than the table returns everything")
	assert.Empty(t, table.TopK(0))
}
