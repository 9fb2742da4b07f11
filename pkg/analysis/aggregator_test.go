package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
)

// listings builds a record set with brand, price, and unrepaired_damage
// columns. Each entry is brand repeated count times at the given price.
type listingSpec struct {
	brand  string
	price  interface{}
	damage interface{}
	count  int
}

func listings(specs ...listingSpec) model.RecordSet {
	rs := model.RecordSet{
		Columns: []string{model.FieldBrand, model.FieldPrice, model.FieldUnrepairedDamage},
	}
	n := 0
	for _, s := range specs {
		for i := 0; i < s.count; i++ {
			n++
			rs.Records = append(rs.Records, model.Record{
				ID: fmt.Sprintf("row-%d", n),
				Fields: map[string]interface{}{
					model.FieldBrand:            s.brand,
					model.FieldPrice:            s.price,
					model.FieldUnrepairedDamage: s.damage,
				},
			})
		}
	}
	return rs
}

func TestQualifyingGroupsThreshold(t *testing.T) {
	// Census shares: A 40%, B 25%, E 30%, C 3%, D 2%. At a 3% threshold
	// C sits exactly on the boundary and is included; D is excluded.
	rs := listings(
		listingSpec{brand: "A", price: int64(100), count: 40},
		listingSpec{brand: "B", price: int64(100), count: 25},
		listingSpec{brand: "E", price: int64(100), count: 30},
		listingSpec{brand: "C", price: int64(100), count: 3},
		listingSpec{brand: "D", price: int64(100), count: 2},
	)

	gs, err := NewAggregator(rs, nil).QualifyingGroups(model.FieldBrand, 0.03)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "E", "B", "C"}, gs.Groups)
	assert.InDelta(t, 0.03, gs.Share("C"), 1e-9)
	assert.InDelta(t, 0.02, gs.Share("D"), 1e-9)
}

func TestQualifyingGroupsIgnoresNullGroup(t *testing.T) {
	rs := listings(
		listingSpec{brand: "A", price: int64(100), count: 3},
	)
	rs.Records = append(rs.Records, model.Record{
		ID:     "null-brand",
		Fields: map[string]interface{}{model.FieldBrand: nil, model.FieldPrice: int64(100)},
	})

	gs, err := NewAggregator(rs, nil).QualifyingGroups(model.FieldBrand, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, gs.Groups)
	assert.InDelta(t, 1.0, gs.Share("A"), 1e-9, "null rows are outside the census total")
}

func TestQualifyingGroupsUnknownField(t *testing.T) {
	rs := listings(listingSpec{brand: "A", price: int64(1), count: 1})
	_, err := NewAggregator(rs, nil).QualifyingGroups("no_such_column", 0.03)

	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_column", unknown.Field)
}

func TestMeanTruncatesTowardZero(t *testing.T) {
	rs := listings(
		listingSpec{brand: "A", price: int64(100), count: 1},
		listingSpec{brand: "A", price: int64(101), count: 1},
		listingSpec{brand: "B", price: int64(7), count: 3},
	)
	agg := NewAggregator(rs, nil)

	summary, err := agg.Aggregate(model.FieldBrand, model.FieldPrice, 0.0)
	require.NoError(t, err)

	assert.Equal(t, int64(100), summary.Means["A"], "100.5 truncates to 100")
	assert.Equal(t, int64(7), summary.Means["B"])
}

func TestMeanEmptyGroup(t *testing.T) {
	// B qualifies by frequency but has no usable price values.
	rs := listings(
		listingSpec{brand: "A", price: int64(500), count: 2},
		listingSpec{brand: "B", price: nil, count: 2},
	)
	agg := NewAggregator(rs, nil)

	gs, err := agg.QualifyingGroups(model.FieldBrand, 0.0)
	require.NoError(t, err)

	_, err = agg.Mean(gs, model.FieldPrice)
	var empty *EmptyGroupError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "B", empty.Group)
	assert.Equal(t, model.FieldPrice, empty.Field)
	assert.Contains(t, empty.Error(), "B")
}

func TestMeanUnknownValueField(t *testing.T) {
	rs := listings(listingSpec{brand: "A", price: int64(1), count: 1})
	agg := NewAggregator(rs, nil)

	gs, err := agg.QualifyingGroups(model.FieldBrand, 0.0)
	require.NoError(t, err)

	_, err = agg.Mean(gs, "horsepower")
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "horsepower", unknown.Field)
}

func TestSummaryTableSharedGroupSelection(t *testing.T) {
	rs := model.RecordSet{
		Columns: []string{model.FieldBrand, model.FieldPrice, model.FieldOdometerKm},
		Records: []model.Record{
			{ID: "1", Fields: map[string]interface{}{model.FieldBrand: "bmw", model.FieldPrice: int64(8000), model.FieldOdometerKm: int64(130000)}},
			{ID: "2", Fields: map[string]interface{}{model.FieldBrand: "bmw", model.FieldPrice: int64(9000), model.FieldOdometerKm: int64(150000)}},
			{ID: "3", Fields: map[string]interface{}{model.FieldBrand: "opel", model.FieldPrice: int64(3000), model.FieldOdometerKm: int64(120000)}},
		},
	}

	table, err := NewAggregator(rs, nil).SummaryTable(
		model.FieldBrand,
		[]string{model.FieldPrice, model.FieldOdometerKm},
		0.0,
	)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "bmw", table.Rows[0].Group, "rows ordered by group frequency")
	assert.Equal(t, []int64{8500, 140000}, table.Rows[0].Means)
	assert.Equal(t, "opel", table.Rows[1].Group)
	assert.Equal(t, []int64{3000, 120000}, table.Rows[1].Means)
}

func TestAggregateDeterministic(t *testing.T) {
	rs := listings(
		listingSpec{brand: "volkswagen", price: int64(5400), count: 12},
		listingSpec{brand: "bmw", price: int64(8300), count: 9},
		listingSpec{brand: "opel", price: int64(2900), count: 9},
		listingSpec{brand: "audi", price: int64(9300), count: 5},
	)
	agg := NewAggregator(rs, nil)

	first, err := agg.Aggregate(model.FieldBrand, model.FieldPrice, 0.03)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := agg.Aggregate(model.FieldBrand, model.FieldPrice, 0.03)
		require.NoError(t, err)
		assert.Equal(t, first.Sorted(), again.Sorted())
	}
}

func TestCompareDamage(t *testing.T) {
	rs := listings(
		listingSpec{brand: "A", price: int64(10000), damage: "no", count: 3},
		listingSpec{brand: "A", price: int64(3001), damage: "yes", count: 2},
		listingSpec{brand: "A", price: int64(5000), damage: nil, count: 4},
	)

	summary, err := NewAggregator(rs, nil).CompareDamage()
	require.NoError(t, err)

	assert.Equal(t, int64(3001), summary.DamagedMeanPrice)
	assert.Equal(t, int64(10000), summary.UndamagedMeanPrice)
	assert.Equal(t, 2, summary.DamagedCount)
	assert.Equal(t, 3, summary.UndamagedCount)
}

func TestCompareDamageEmptyPartition(t *testing.T) {
	rs := listings(
		listingSpec{brand: "A", price: int64(10000), damage: "no", count: 3},
	)
	_, err := NewAggregator(rs, nil).CompareDamage()

	var empty *EmptyGroupError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "yes", empty.Group)
}
