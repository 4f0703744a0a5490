package query

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/pivotq/grid"
)

// ============================================================================
// CONSTRUCTION
// ============================================================================

func TestNewRegistersNamesAndCaptions(t *testing.T) {
	q := newSalesQuery(t)

	assert.Equal(t, []string{"country", "Country", "city", "City", "year", "quarter"}, q.FieldNames())
	assert.Equal(t, []string{"amount", "Revenue", "qty", "Quantity"}, q.MeasureNames())
	assert.Equal(t, 4, q.Captions().Len())

	for _, name := range q.FieldNames() {
		_, ok := q.Setter(name)
		assert.True(t, ok, name)
	}
	_, ok := q.Setter("amount")
	assert.False(t, ok, "data fields are not filterable")

	assert.Same(t, q.Measure("amount"), q.Measure("Revenue"))
	assert.Equal(t, "amount", q.Measure("Revenue").Name())
	assert.Empty(t, q.Data().Name())
	assert.NoError(t, q.Err())
}

func TestNewWithParams(t *testing.T) {
	q := newSalesQuery(t, WithParams(
		Param{Name: "City", Value: "London"},
		Param{Name: "country", Value: "UK"},
	))

	assert.Equal(t, []Filter{
		{Field: "city", Value: "London", Depth: 1},
		{Field: "country", Value: "UK", Depth: 2},
	}, q.Filters(grid.Rows))
	assert.Empty(t, q.Filters(grid.Columns))
	assert.Equal(t, []any{180.0}, q.Data().Flat())
}

func TestNewWithParamMapAppliesSortedKeys(t *testing.T) {
	q := newSalesQuery(t, WithParamMap(map[string]string{
		"country": "USA",
		"City":    "NY",
		"year":    "2024",
	}))

	assert.Equal(t, []Filter{
		{Field: "city", Value: "NY", Depth: 1},
		{Field: "country", Value: "USA", Depth: 2},
	}, q.Filters(grid.Rows))
	assert.Equal(t, []Filter{{Field: "year", Value: "2024", Depth: 2}}, q.Filters(grid.Columns))
	assert.Equal(t, []any{150.0}, q.Measure("amount").Flat())
}

func TestNewUnknownParam(t *testing.T) {
	_, err := New(salesGrid(t), WithParams(Param{Name: "region", Value: "EMEA"}))
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "region")
}

func TestNameOnBothAxesFiltersColumns(t *testing.T) {
	records := []grid.Record{
		{Dimensions: map[string]string{"region": "EU"}, Measures: map[string]float64{"v": 1}},
		{Dimensions: map[string]string{"region": "US"}, Measures: map[string]float64{"v": 2}},
	}
	pg, err := grid.Build(grid.NewSliceView(records), grid.Config{
		RowFields:    []grid.Field{{Name: "region"}},
		ColumnFields: []grid.Field{{Name: "region"}},
		DataFields:   []grid.Field{{Name: "v"}},
	})
	require.NoError(t, err)

	q, err := New(pg)
	require.NoError(t, err)
	q.Filter("region", "US")

	assert.Empty(t, q.Filters(grid.Rows))
	assert.Len(t, q.Filters(grid.Columns), 1)
}

// ============================================================================
// FILTER CHAINING
// ============================================================================

func TestFilterChaining(t *testing.T) {
	q := newSalesQuery(t)

	got := q.Filter("Country", "USA").Filter("city", "NY")
	assert.Same(t, q, got)

	set, ok := q.Setter("year")
	require.True(t, ok)
	assert.Same(t, q, set("2023"))

	want := []Record{{"city": "NY", "year": "2023", "data": 100.0}}
	if diff := cmp.Diff(want, q.Data().Records()); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterUnknownField(t *testing.T) {
	q := newSalesQuery(t)

	q.Filter("region", "EMEA").Filter("country", "UK").Filter("planet", "Mars")

	require.ErrorIs(t, q.Err(), ErrUnknownField)
	assert.Contains(t, q.Err().Error(), "region", "first error wins")
	assert.Len(t, q.Filters(grid.Rows), 1, "valid filters still record")
	assert.Equal(t, []any{180.0}, q.Data().Flat())
}

func TestFiltersReturnsCopy(t *testing.T) {
	q := newSalesQuery(t).Filter("country", "USA")

	fs := q.Filters(grid.Rows)
	fs[0].Value = "UK"

	assert.Equal(t, "USA", q.Filters(grid.Rows)[0].Value)
}

// ============================================================================
// MEASURES
// ============================================================================

func TestQueryScenarios(t *testing.T) {
	tests := []struct {
		name    string
		filters [][2]string
		measure string
		names   []string
		want    []Record
		flat    []any
	}{
		{
			name: "unfiltered default measure",
			want: []Record{{"data": 550.0}},
			flat: []any{550.0},
		},
		{
			name:    "caption measure keys by canonical name",
			filters: [][2]string{{"Country", "USA"}},
			measure: "Revenue",
			want:    []Record{{"country": "USA", "amount": 330.0}},
			flat:    []any{330.0},
		},
		{
			name:    "cells on both axes",
			filters: [][2]string{{"City", "London"}, {"quarter", "Q1"}},
			measure: "amount",
			want: []Record{
				{"city": "London", "quarter": "Q1", "amount": nil},
				{"city": "London", "quarter": "Q1", "amount": 120.0},
				{"city": "London", "quarter": "Q1", "amount": nil},
				{"city": "London", "quarter": "Q1", "amount": nil},
			},
			flat: []any{nil, 120.0, nil, nil},
		},
		{
			name:    "several measures per cell",
			filters: [][2]string{{"country", "UK"}, {"year", "2024"}},
			names:   []string{"amount", "Quantity"},
			want: []Record{
				{"country": "UK", "year": "2024", "data": map[string]any{"amount": 120.0, "Quantity": 3.0}},
			},
			flat: []any{120.0, 3.0},
		},
		{
			name:    "inconsistent branch",
			filters: [][2]string{{"country", "USA"}, {"city", "London"}},
			measure: "amount",
			want:    []Record{},
			flat:    []any{},
		},
		{
			name:    "column filter only",
			filters: [][2]string{{"year", "2023"}},
			measure: "qty",
			want:    []Record{{"year": "2023", "qty": 3.0}},
			flat:    []any{3.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newSalesQuery(t)
			for _, f := range tt.filters {
				q.Filter(f[0], f[1])
			}
			require.NoError(t, q.Err())

			m := q.Data()
			if tt.measure != "" {
				m = q.Measure(tt.measure)
			}

			if diff := cmp.Diff(tt.want, m.Records(tt.names...)); diff != "" {
				t.Errorf("Records mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.flat, m.Flat(tt.names...))
		})
	}
}

func TestMeasureUnknownName(t *testing.T) {
	q := newSalesQuery(t)

	m := q.Measure("profit")

	require.ErrorIs(t, q.Err(), ErrUnknownMeasure)
	assert.Equal(t, "profit", m.Name())
	assert.Equal(t, []Record{{"profit": nil}}, m.Records())
	assert.Equal(t, []any{nil}, m.Flat())
}

func TestMeasureDataIsDefaultHandle(t *testing.T) {
	q := newSalesQuery(t)

	m := q.Measure(DataKey)

	require.NoError(t, q.Err())
	assert.Same(t, q.Data(), m)
	assert.Equal(t, []any{550.0}, m.Flat())
	assert.Equal(t, []Record{{"data": 550.0}}, m.Records())
	assert.NotContains(t, q.MeasureNames(), DataKey)
}

func TestMeasureDataFieldNamedData(t *testing.T) {
	records := []grid.Record{
		{Dimensions: map[string]string{"k": "a"}, Measures: map[string]float64{"v": 1, "data": 7}},
	}
	pg, err := grid.Build(grid.NewSliceView(records), grid.Config{
		RowFields:  []grid.Field{{Name: "k"}},
		DataFields: []grid.Field{{Name: "v"}, {Name: "data"}},
	})
	require.NoError(t, err)

	q, err := New(pg)
	require.NoError(t, err)

	assert.NotSame(t, q.Data(), q.Measure(DataKey))
	assert.Equal(t, []any{7.0}, q.Measure(DataKey).Flat())
	assert.Equal(t, []any{1.0}, q.Data().Flat())
	assert.NoError(t, q.Err())
}

func TestMeasureReResolvesOnEveryCall(t *testing.T) {
	q := newSalesQuery(t)
	m := q.Measure("amount")

	assert.Equal(t, []any{550.0}, m.Flat())

	q.Filter("country", "USA")
	assert.Equal(t, []any{330.0}, m.Flat())

	q.Filter("city", "LA")
	assert.Equal(t, []any{80.0}, m.Flat())
	assert.Equal(t, []any{80.0}, m.Flat(), "repeated calls are stable")
}

func TestResolveLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	q := newSalesQuery(t, WithLogger(logger))

	q.Filter("country", "UK").Resolve(grid.Rows)

	out := buf.String()
	assert.Contains(t, out, "axis resolved")
	assert.Contains(t, out, "axis=rows")
	assert.Contains(t, out, "nodes=1")
}

// ============================================================================
// EQUIVALENCES
// ============================================================================

func TestInitialParamsEqualChaining(t *testing.T) {
	withParams := newSalesQuery(t, WithParamMap(map[string]string{"Country": "USA"}))
	chained := newSalesQuery(t).Filter("Country", "USA")

	assert.Equal(t, chained.Filters(grid.Rows), withParams.Filters(grid.Rows))
	if diff := cmp.Diff(chained.Data().Records(), withParams.Data().Records()); diff != "" {
		t.Errorf("Records mismatch (-chained +params):\n%s", diff)
	}
}

func TestCaptionEquivalence(t *testing.T) {
	byName := newSalesQuery(t).Filter("country", "UK").Filter("city", "London")
	byCaption := newSalesQuery(t).Filter("Country", "UK").Filter("City", "London")

	assert.Equal(t, byName.Filters(grid.Rows), byCaption.Filters(grid.Rows))
	assert.Equal(t, byName.Measure("qty").Records(), byCaption.Measure("Quantity").Records())
	assert.Equal(t, byName.Measure("amount").Flat("qty"), byCaption.Measure("Revenue").Flat("Quantity"))
}

func TestFlatSizeIsCrossProduct(t *testing.T) {
	q := newSalesQuery(t).Filter("city", "London").Filter("quarter", "Q2")

	rows, cols := q.Resolve(grid.Rows), q.Resolve(grid.Columns)
	require.Len(t, rows, 2)
	require.Len(t, cols, 2)

	assert.Len(t, q.Data().Flat(), len(rows)*len(cols))
	assert.Len(t, q.Data().Flat("amount", "qty"), 2*len(rows)*len(cols))
}
