// =============================================================================
// Invoicer - Generate Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer generate <data> (--rows 0,2,5-7 | --all) [--metrics-file path]
//
// PROCESSING PIPELINE:
//   1. Load the data file and select rows
//   2. Validate the selection (findings are printed, never fatal)
//   3. Fill, render and write one PDF per row into output_dir
//   4. Print the summary and write the run report
//
// A failed row does not stop the others. The command exits non-zero when
// any row failed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/batch"
	"github.com/ginjaninja78/invoicer/internal/source"
	"github.com/ginjaninja78/invoicer/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// rowsFlag selects rows by index (shared by generate and send).
var rowsFlag string

// allRows selects every row (shared by generate and send).
var allRows bool

// metricsFile is where Prometheus textfile metrics are written, if set.
var metricsFile string

var generateCmd = &cobra.Command{
	Use:   "generate <data>",
	Short: "Generate one PDF invoice per selected row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args[0], batch.OpGenerate)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addSelectionFlags(generateCmd)
}

func addSelectionFlags(c *cobra.Command) {
	c.Flags().StringVarP(&rowsFlag, "rows", "r", "", "Rows to process, e.g. 0,2,5-7")
	c.Flags().BoolVar(&allRows, "all", false, "Process every row")
	c.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
}

// runBatch is the body of generate and send.
func runBatch(cmd *cobra.Command, dataPath, op string) error {
	table, err := source.Load(dataPath, app.cfg)
	if err != nil {
		return err
	}

	indices, err := parseRows(rowsFlag, allRows, len(table.Rows))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := validation.NewValidator(app.cfg).Validate(table, indices, op == batch.OpSend)
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Validation: %d error(s), %d warning(s)\n", result.ErrorCount, result.WarningCount)
		printFindings(out, result)
		fmt.Fprintln(out)
	}

	runner, metrics, err := newRunner(op == batch.OpSend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	app.logger.Info("starting", "op", op, "rows", len(indices), "template", templatePath())

	var outcomes []batch.Outcome
	if op == batch.OpSend {
		outcomes = runner.Send(ctx, table, indices)
	} else {
		outcomes = runner.Generate(ctx, table, indices)
	}
	return finish(out, op, outcomes, metrics, metricsFile)
}
