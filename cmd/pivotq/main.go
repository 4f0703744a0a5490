package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ============================================================================
// PIVOTQ CLI — Query a pivot grid built from CSV
// ============================================================================

const version = "0.3.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run builds the command tree and executes it; it is main without os.Exit.
func run(args []string, out, errOut io.Writer) error {
	root := newRootCmd(out, errOut)
	root.SetArgs(args)
	return root.Execute()
}

type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "pivotq",
		Short: "Query pivot grids built from CSV data",
		Long: `pivotq lays a CSV dataset out as a pivot grid (row and column hierarchies
with measures at every cell) and answers filter queries against it.

Examples:
  pivotq discover --file sales.csv > layout.yaml
  pivotq query --file sales.csv --schema layout.yaml --filter country=USA --measure amount
  pivotq query --file sales.csv --filter Country=USA --filter City=NY --flat`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Logging level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log output format: text or json")

	root.AddCommand(
		newQueryCmd(g),
		newDiscoverCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "pivotq %s\n", version)
			},
		},
	)
	return root
}

// logger builds the command's logger on its error stream.
func (g *globalFlags) logger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(g.logFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q: want text or json", g.logFormat)
	}
}
