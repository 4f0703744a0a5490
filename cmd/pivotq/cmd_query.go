package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/pivotq/helpers"
	"github.com/spektr-org/pivotq/query"
	"github.com/spektr-org/pivotq/render"
	"github.com/spektr-org/pivotq/schema"
)

type queryFlags struct {
	file       string
	schemaPath string
	rows       []string
	columns    []string
	filters    []string
	measure    string
	names      []string
	flat       bool
	format     string
	outFile    string
}

func newQueryCmd(g *globalFlags) *cobra.Command {
	f := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter the pivot grid and extract measures",
		Long: `Builds the pivot grid of a CSV file and extracts a measure at every
(row, column) cell matching the filters. Filters take field names or captions;
several filters on one axis must lie on the same branch of its hierarchy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, g, f)
		},
	}

	cmd.Flags().StringVar(&f.file, "file", "", "Path to CSV data file (required)")
	cmd.Flags().StringVar(&f.schemaPath, "schema", "", "Path to a YAML or JSON schema (default: auto-discover)")
	cmd.Flags().StringSliceVar(&f.rows, "rows", nil, "Row field keys, shallowest first (overrides the schema layout)")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "Column field keys, shallowest first (overrides the schema layout)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Filter as Field=Value; repeatable")
	cmd.Flags().StringVar(&f.measure, "measure", "", "Measure name or caption (default: the grid's default measure)")
	cmd.Flags().StringSliceVar(&f.names, "names", nil, "Extract several measures per cell, nested under \"data\"")
	cmd.Flags().BoolVar(&f.flat, "flat", false, "Emit bare values only")
	cmd.Flags().StringVar(&f.format, "format", "json", "Output format: json, pretty, csv")
	cmd.Flags().StringVar(&f.outFile, "out", "", "Write output to file instead of stdout")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runQuery(cmd *cobra.Command, g *globalFlags, f *queryFlags) error {
	logger, err := g.logger(cmd)
	if err != nil {
		return err
	}
	switch f.format {
	case "json", "pretty", "csv":
	default:
		return fmt.Errorf("invalid --format %q: want json, pretty or csv", f.format)
	}

	data, err := os.ReadFile(f.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	sch, err := loadSchema(f.schemaPath, data)
	if err != nil {
		return err
	}
	if len(f.rows) > 0 {
		sch.Layout.Rows = f.rows
	}
	if len(f.columns) > 0 {
		sch.Layout.Columns = f.columns
	}
	if err := sch.Validate(); err != nil {
		return err
	}

	pg, err := helpers.BuildGrid(data, *sch, logger)
	if err != nil {
		return err
	}

	params, err := parseFilters(f.filters)
	if err != nil {
		return err
	}
	q, err := query.New(pg, query.WithParams(params...), query.WithLogger(logger))
	if err != nil {
		return err
	}

	m := q.Data()
	if f.measure != "" {
		m = q.Measure(f.measure)
	}
	if err := q.Err(); err != nil {
		return err
	}

	write := func(w io.Writer) error {
		if f.flat {
			values := m.Flat(f.names...)
			if f.format == "csv" {
				return writeFlatCSV(w, values)
			}
			return writeJSON(w, values, f.format)
		}

		records := m.Records(f.names...)
		logger.Info("query executed", "filters", len(params), "records", len(records))
		if f.format == "csv" {
			table := render.BuildTable(sch.Name, pg.Config(), records, measureKeys(m, f.names))
			return render.WriteCSV(w, table)
		}
		return writeJSON(w, records, f.format)
	}

	if f.outFile == "" {
		return write(cmd.OutOrStdout())
	}
	return writeFile(f.outFile, write)
}

// writeFile creates path and hands it to write. A failed close is reported
// unless write already failed.
func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func loadSchema(path string, data []byte) (*schema.Config, error) {
	if path != "" {
		return schema.Load(path)
	}
	sch, err := schema.DiscoverFromCSV(data)
	if err != nil {
		return nil, fmt.Errorf("auto-discover failed: %w", err)
	}
	return sch, nil
}

// parseFilters turns Field=Value arguments into query params, in order.
func parseFilters(args []string) ([]query.Param, error) {
	params := make([]query.Param, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --filter %q: want Field=Value", arg)
		}
		params = append(params, query.Param{Name: strings.TrimSpace(name), Value: value})
	}
	return params, nil
}

// measureKeys lists the payload keys of the records a measure produces.
func measureKeys(m *query.Measure, names []string) []string {
	if len(names) > 0 {
		return names
	}
	if m.Name() == "" {
		return []string{query.DataKey}
	}
	return []string{m.Name()}
}

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error
	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeFlatCSV(w io.Writer, values []any) error {
	table := &render.TableData{Columns: []render.Column{{Key: "value", Label: "value"}}}
	for _, v := range values {
		table.Rows = append(table.Rows, []string{render.FormatValue(v)})
	}
	return render.WriteCSV(w, table)
}
