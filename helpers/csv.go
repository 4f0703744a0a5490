package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spektr-org/pivotq/grid"
	"github.com/spektr-org/pivotq/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into a grid.RecordView
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, Sheets).
// This helper converts the raw bytes into typed rows read through a
// grid.DomainAdapter whose accessors follow the schema.
// ============================================================================

// csvRow holds the mapped cells of one data row, in header order.
type csvRow struct {
	dims     []string
	measures []float64
}

// ParseCSVView parses CSV bytes into a RecordView using the schema for
// classification. Headers are matched to schema keys in snake_case and
// unmapped columns are ignored. Synthetic measures read 1 on every row.
//
// Rows the CSV reader rejects (wrong field count, bad quoting) are skipped
// and counted in rejected.
func ParseCSVView(data []byte, sch schema.Config) (view grid.RecordView, rejected int, err error) {
	reader := csv.NewReader(bytes.NewReader(data))

	headers, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	dimSet := make(map[string]bool)
	for _, d := range sch.Dimensions {
		dimSet[d.Key] = true
	}
	measSet := make(map[string]bool)
	for _, m := range sch.Measures {
		if !m.IsSynthetic {
			measSet[m.Key] = true
		}
	}

	adapter := grid.NewDomainAdapter[csvRow]()
	var dimCols, measCols []int
	for i, h := range headers {
		key := schema.HeaderKey(h)
		switch {
		case dimSet[key]:
			slot := len(dimCols)
			dimCols = append(dimCols, i)
			adapter.Dimension(key, func(r csvRow) string { return r.dims[slot] })
		case measSet[key]:
			slot := len(measCols)
			measCols = append(measCols, i)
			adapter.Measure(key, func(r csvRow) float64 { return r.measures[slot] })
		}
	}
	for _, m := range sch.Measures {
		if m.IsSynthetic {
			adapter.Measure(m.Key, func(csvRow) float64 { return 1 })
		}
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, rejected, fmt.Errorf("failed to read CSV row: %w", err)
			}
			rejected++
			continue
		}

		row := csvRow{
			dims:     make([]string, len(dimCols)),
			measures: make([]float64, len(measCols)),
		}
		for slot, col := range dimCols {
			row.dims[slot] = strings.TrimSpace(record[col])
		}
		for slot, col := range measCols {
			if f, ok := parseNumber(strings.TrimSpace(record[col])); ok {
				row.measures[slot] = f
			}
		}
		rows = append(rows, row)
	}

	return adapter.Bind(rows), rejected, nil
}

// BuildGrid parses CSV with a schema and builds the pivot grid of its layout.
// Skipped rows are reported on logger at warn level; a nil logger means
// slog.Default(). The logger is also handed to the grid.
func BuildGrid(data []byte, sch schema.Config, logger *slog.Logger, opts ...grid.Option) (*grid.PivotGrid, error) {
	if logger == nil {
		logger = slog.Default()
	}

	view, rejected, err := ParseCSVView(data, sch)
	if err != nil {
		return nil, err
	}
	if rejected > 0 {
		logger.Warn("skipped malformed CSV rows", "rejected", rejected, "parsed", view.Len())
	}

	base := []grid.Option{grid.WithLogger(logger)}
	if dm := sch.Layout.DefaultMeasure; dm != "" {
		base = append(base, grid.WithDefaultMeasure(dm))
	}
	pg, err := grid.Build(view, sch.GridConfig(), append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build pivot grid: %w", err)
	}
	return pg, nil
}

// parseNumber accepts "1,234.56" style separators and a leading currency sign.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimLeft(strings.ReplaceAll(s, ",", ""), "$€£")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
