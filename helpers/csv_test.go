package helpers

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/pivotq/grid"
	"github.com/spektr-org/pivotq/schema"
)

var salesCSV = []byte(`Region,City,Product,Amount,Units
North,Boston,Widget,10.50,1
North,Boston,Gadget,20.00,2
North,Albany,Widget,5.25,1
South,Miami,Widget,7.75,3
South,Miami,Gadget,12.00,1
South,Dallas,Gizmo,9.00,2
`)

func discover(t *testing.T) *schema.Config {
	t.Helper()
	sch, err := schema.DiscoverFromCSV(salesCSV)
	require.NoError(t, err)
	return sch
}

func TestParseCSVView(t *testing.T) {
	view, rejected, err := ParseCSVView(salesCSV, *discover(t))
	require.NoError(t, err)

	assert.Zero(t, rejected)
	require.Equal(t, 6, view.Len())
	assert.Equal(t, []string{"region", "city", "product"}, view.DimensionKeys())
	assert.Equal(t, []string{"amount", "units", schema.RecordCountKey}, view.MeasureKeys())

	assert.Equal(t, "North", view.Dimension(0, "region"))
	assert.Equal(t, "Boston", view.Dimension(0, "city"))
	assert.Equal(t, 10.5, view.Measure(0, "amount"))
	assert.Equal(t, 1.0, view.Measure(0, schema.RecordCountKey))
	assert.Equal(t, "Gizmo", view.Dimension(5, "product"))
	assert.Equal(t, 2.0, view.Measure(5, "units"))
}

func TestParseCSVViewSkipsUnmappedColumns(t *testing.T) {
	sch := schema.Config{
		Dimensions: []schema.DimensionMeta{{Key: "region"}},
		Measures:   []schema.MeasureMeta{{Key: "amount"}},
	}
	view, _, err := ParseCSVView(salesCSV, sch)
	require.NoError(t, err)

	assert.Equal(t, []string{"region"}, view.DimensionKeys())
	assert.Equal(t, []string{"amount"}, view.MeasureKeys())
	assert.Equal(t, "South", view.Dimension(5, "region"))
	assert.Equal(t, "", view.Dimension(5, "city"))
	assert.Equal(t, 9.0, view.Measure(5, "amount"))
}

func TestParseCSVViewCountsRejectedRows(t *testing.T) {
	data := []byte("Team Name,Total Cost\nCore,\"$1,234.50\"\nOps\nInfra,n/a\nEdge,\"12\"3\n")
	sch := schema.Config{
		Dimensions: []schema.DimensionMeta{{Key: "team_name"}},
		Measures:   []schema.MeasureMeta{{Key: "total_cost"}},
	}

	view, rejected, err := ParseCSVView(data, sch)
	require.NoError(t, err)

	assert.Equal(t, 2, rejected, "short row and bad quoting")
	require.Equal(t, 2, view.Len())
	assert.Equal(t, 1234.5, view.Measure(0, "total_cost"))
	assert.Equal(t, "Infra", view.Dimension(1, "team_name"))
	assert.Zero(t, view.Measure(1, "total_cost"), "unparsable numbers read as zero")
}

func TestParseCSVViewEmpty(t *testing.T) {
	_, _, err := ParseCSVView(nil, schema.Config{})
	require.ErrorContains(t, err, "failed to read CSV headers")
}

func TestBuildGrid(t *testing.T) {
	sch := discover(t)
	pg, err := BuildGrid(salesCSV, *sch, nil)
	require.NoError(t, err)

	assert.Equal(t, 64.5, pg.GetData("amount", nil, nil))
	assert.Equal(t, 6.0, pg.GetData(schema.RecordCountKey, nil, nil))

	rows := pg.Tree(grid.Rows)
	north := rows.NodesAt(2)[0]
	assert.Equal(t, "North", north.Value)
	assert.Equal(t, 35.75, pg.GetData("amount", north, nil))
	assert.Nil(t, pg.GetData("Amount", north, nil), "captions are not data field names")
}

func TestBuildGridDefaultMeasure(t *testing.T) {
	sch := discover(t)
	sch.Layout.DefaultMeasure = "units"

	pg, err := BuildGrid(salesCSV, *sch, nil)
	require.NoError(t, err)
	assert.Equal(t, "units", pg.DefaultMeasure())
	assert.Equal(t, 10.0, pg.GetData("", nil, nil))
}

func TestBuildGridWarnsOnRejectedRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	data := append(append([]byte{}, salesCSV...), "West,Denver\n"...)

	pg, err := BuildGrid(data, *discover(t), logger)
	require.NoError(t, err)

	assert.Equal(t, 64.5, pg.GetData("amount", nil, nil))
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "skipped malformed CSV rows")
	assert.Contains(t, out, "rejected=1")
	assert.Contains(t, out, "parsed=6")
}

func TestBuildGridQuietWithoutRejectedRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	_, err := BuildGrid(salesCSV, *discover(t), logger)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"1,234.56", 1234.56, true},
		{"€12", 12, true},
		{"-3.5", -3.5, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
