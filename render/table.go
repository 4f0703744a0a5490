package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spektr-org/pivotq/grid"
	"github.com/spektr-org/pivotq/query"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from structured query records
// ============================================================================
// One column per row/column field that appears in the records (row fields
// first, in declaration order), then one column per measure. Cells missing
// from a record (e.g. an unfiltered axis) render empty.
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// BuildTable lays records out as a table. measures names the payload keys:
// top-level keys for single-measure records, or the nested names of a
// multi-measure call (looked up under query.DataKey).
func BuildTable(title string, cfg grid.Config, records []query.Record, measures []string) *TableData {
	table := &TableData{Title: title, Columns: []Column{}, Rows: [][]string{}}
	if len(records) == 0 {
		return table
	}

	var fields []grid.Field
	for _, f := range append(append([]grid.Field(nil), cfg.RowFields...), cfg.ColumnFields...) {
		for _, rec := range records {
			if _, ok := rec[f.Name]; ok {
				fields = append(fields, f)
				break
			}
		}
	}

	for _, f := range fields {
		table.Columns = append(table.Columns, Column{Key: f.Name, Label: f.Label(), Type: "text", Align: "left"})
	}
	for _, m := range measures {
		table.Columns = append(table.Columns, Column{Key: m, Label: measureLabel(cfg, m), Type: "number", Align: "right"})
	}

	for _, rec := range records {
		row := make([]string, 0, len(table.Columns))
		for _, f := range fields {
			v, _ := rec[f.Name].(string)
			row = append(row, v)
		}
		for _, m := range measures {
			row = append(row, FormatValue(measureValue(rec, m)))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// WriteCSV writes the header labels followed by the rows.
func WriteCSV(w io.Writer, table *TableData) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// FormatValue renders a cell: whole numbers without decimals, fractional
// numbers with two, nil as empty.
func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%.2f", n)
	case int:
		return fmt.Sprintf("%d", n)
	default:
		return fmt.Sprint(n)
	}
}

func measureValue(rec query.Record, key string) any {
	if v, ok := rec[key]; ok {
		if _, nested := v.(map[string]any); !nested {
			return v
		}
	}
	if data, ok := rec[query.DataKey].(map[string]any); ok {
		return data[key]
	}
	return nil
}

func measureLabel(cfg grid.Config, key string) string {
	for _, f := range cfg.DataFields {
		if f.Name == key || f.Caption == key {
			return f.Label()
		}
	}
	return key
}
