package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spektr-org/pivotq/grid"
)

// Row tree (depth):  <root>(3) → country(2) → city(1)
// Column tree:       <root>(3) → year(2) → quarter(1)
//
//	#  country  city    year  quarter  amount  qty
//	0  USA      NY      2023  Q1       100     1
//	1  USA      NY      2024  Q1       150     2
//	2  USA      LA      2023  Q2        80     1
//	3  UK       London  2024  Q1       120     3
//	4  UK       London  2023  Q2        60     1
//	5  Canada   London  2024  Q2        40     1
var salesRows = [][]any{
	{"USA", "NY", "2023", "Q1", 100.0, 1.0},
	{"USA", "NY", "2024", "Q1", 150.0, 2.0},
	{"USA", "LA", "2023", "Q2", 80.0, 1.0},
	{"UK", "London", "2024", "Q1", 120.0, 3.0},
	{"UK", "London", "2023", "Q2", 60.0, 1.0},
	{"Canada", "London", "2024", "Q2", 40.0, 1.0},
}

var salesConfig = grid.Config{
	RowFields:    []grid.Field{{Name: "country", Caption: "Country"}, {Name: "city", Caption: "City"}},
	ColumnFields: []grid.Field{{Name: "year"}, {Name: "quarter"}},
	DataFields: []grid.Field{
		{Name: "amount", Caption: "Revenue"},
		{Name: "qty", Caption: "Quantity"},
	},
}

func salesRecords() []grid.Record {
	out := make([]grid.Record, len(salesRows))
	for i, r := range salesRows {
		out[i] = grid.Record{
			Dimensions: map[string]string{
				"country": r[0].(string),
				"city":    r[1].(string),
				"year":    r[2].(string),
				"quarter": r[3].(string),
			},
			Measures: map[string]float64{
				"amount": r[4].(float64),
				"qty":    r[5].(float64),
			},
		}
	}
	return out
}

func salesGrid(t *testing.T) *grid.PivotGrid {
	t.Helper()
	pg, err := grid.Build(grid.NewSliceView(salesRecords()), salesConfig)
	require.NoError(t, err)
	return pg
}

func newSalesQuery(t *testing.T, opts ...Option) *Query {
	t.Helper()
	q, err := New(salesGrid(t), opts...)
	require.NoError(t, err)
	return q
}

// paths renders nodes as "/"-joined value paths; the root renders as "".
func paths(nodes []*grid.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		for j, v := range n.Path() {
			if j > 0 {
				out[i] += "/"
			}
			out[i] += v
		}
	}
	return out
}
