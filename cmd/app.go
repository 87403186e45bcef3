// =============================================================================
// Invoicer - Command Helpers
// =============================================================================
//
// Shared plumbing of the list, generate, send and sample commands: loading
// the data and the template, selecting rows, building the batch runner, and
// writing the run report.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/invoicer/internal/batch"
	"github.com/ginjaninja78/invoicer/internal/doctemplate"
	"github.com/ginjaninja78/invoicer/internal/filler"
	"github.com/ginjaninja78/invoicer/internal/mailer"
	"github.com/ginjaninja78/invoicer/internal/render"
	"github.com/ginjaninja78/invoicer/internal/validation"
	"github.com/ginjaninja78/invoicer/pkg/utils"
)

// errRowsFailed is returned when a batch finished with failed rows, so the
// process exits non-zero.
var errRowsFailed = errors.New("some rows failed")

// =============================================================================
// ROW SELECTION
// =============================================================================

// parseRows turns a selection like "0,2,5-7" into row indices, in the order
// given and without duplicates. With all, every row of an n-row table is
// selected and rows must be empty.
func parseRows(rows string, all bool, n int) ([]int, error) {
	if all {
		if rows != "" {
			return nil, fmt.Errorf("--rows and --all are mutually exclusive")
		}
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}
	if strings.TrimSpace(rows) == "" {
		return nil, fmt.Errorf("select rows with --rows (e.g. 0,2,5-7) or --all")
	}

	var indices []int
	seen := make(map[int]bool)
	add := func(i int) error {
		if i < 0 || i >= n {
			return fmt.Errorf("row %d out of range (table has %d rows)", i, n)
		}
		if !seen[i] {
			seen[i] = true
			indices = append(indices, i)
		}
		return nil
	}

	for _, part := range strings.Split(rows, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid row %q", part)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || to < from {
				return nil, fmt.Errorf("invalid row range %q", part)
			}
		}
		for i := from; i <= to; i++ {
			if err := add(i); err != nil {
				return nil, err
			}
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no rows selected")
	}
	return indices, nil
}

// =============================================================================
// RUNNER CONSTRUCTION
// =============================================================================

// newRunner builds a batch runner from the loaded configuration. The mailer
// is only constructed when withMailer is set, so generating works without
// mail credentials.
func newRunner(withMailer bool) (*batch.Runner, *batch.Metrics, error) {
	tpl, err := doctemplate.Load(templatePath())
	if err != nil {
		return nil, nil, err
	}
	app.logger.Debug("template loaded", "file", tpl.Name(), "kind", tpl.Kind())

	f, err := filler.New(app.cfg)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := render.New(app.cfg.Renderer)
	if err != nil {
		return nil, nil, err
	}

	var m mailer.Mailer
	if withMailer {
		if m, err = mailer.New(app.cfg.Mail); err != nil {
			return nil, nil, err
		}
	}

	metrics := batch.NewMetrics()
	runner := batch.New(app.cfg, batch.Deps{
		Template: tpl,
		Filler:   f,
		Renderer: renderer,
		Mailer:   m,
		Files:    utils.NewFileManager(app.cfg.OutputDir),
		Metrics:  metrics,
		Logger:   app.logger,
	})
	return runner, metrics, nil
}

// =============================================================================
// RESULTS
// =============================================================================

// finish prints the outcomes, writes the report and metrics, and returns
// errRowsFailed when any row failed.
func finish(out io.Writer, op string, outcomes []batch.Outcome, metrics *batch.Metrics, metricsFile string) error {
	for _, o := range outcomes {
		if o.OK() {
			target := o.File
			if op == batch.OpSend {
				target = o.Recipient
			}
			fmt.Fprintf(out, "  ✓ %3d  %-30s %s\n", o.Index, o.Label, target)
		} else {
			fmt.Fprintf(out, "  ✗ %3d  %-30s %v\n", o.Index, o.Label, o.Err)
		}
	}

	ok, failed := batch.Summary(outcomes)
	fmt.Fprintf(out, "\n=== %s complete ===\n", strings.ToUpper(op[:1])+op[1:])
	fmt.Fprintf(out, "Rows:        %d\n", len(outcomes))
	fmt.Fprintf(out, "Successful:  %d\n", ok)
	fmt.Fprintf(out, "Errors:      %d\n", failed)

	if app.cfg.WritesReport() {
		fm := utils.NewFileManager(app.cfg.OutputDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		path, err := fm.WriteReport(app.cfg.ReportFile, batch.Report(op, outcomes))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Report:      %s\n", path)
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return err
		}
		app.logger.Debug("metrics written", "file", metricsFile)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errRowsFailed, failed, len(outcomes))
	}
	return nil
}

// printFindings writes validation findings, one per line.
func printFindings(out io.Writer, result *validation.ValidationResult) {
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  %s\n", e.Error())
	}
}
