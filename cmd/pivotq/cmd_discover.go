package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/pivotq/schema"
)

func newDiscoverCmd(g *globalFlags) *cobra.Command {
	var (
		file   string
		name   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Print an auto-detected schema and pivot layout for a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := g.logger(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			opts := schema.DefaultDiscoverOptions()
			opts.Name = name
			sch, err := schema.DiscoverFromCSV(data, opts)
			if err != nil {
				return fmt.Errorf("auto-discover failed: %w", err)
			}
			logger.Info("schema discovered",
				"dimensions", len(sch.Dimensions),
				"measures", len(sch.Measures),
				"skipped", len(sch.SkippedColumns),
				"rows", sch.Layout.Rows,
			)

			out, err := schema.Marshal(sch, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to CSV data file (required)")
	cmd.Flags().StringVar(&name, "name", "", "Dataset name")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml, json, pretty")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
