// =============================================================================
// Invoicer - Batch Runner
// =============================================================================
//
// The runner processes a selection of rows and reports one Outcome per row.
//
// PIPELINE (per row):
//   1. Resolve the row's placeholders and fill the template
//   2. (send only) Check the recipient address
//   3. Render the filled document to PDF
//   4. Write the PDF to the output directory, or mail it to the recipient
//
// FAILURE SCOPE:
//   A failure in any step ends that row only. The batch always runs every
//   selected row and returns the outcomes in selection order.
//
// CONCURRENCY:
//   Rows run on up to Concurrency goroutines. Every collaborator (template,
//   filler, renderer, mailer) is safe for concurrent use, and outcomes are
//   stored by position, so no further coordination is needed.
//
// =============================================================================

package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/doctemplate"
	"github.com/ginjaninja78/invoicer/internal/filler"
	"github.com/ginjaninja78/invoicer/internal/mailer"
	"github.com/ginjaninja78/invoicer/internal/render"
	"github.com/ginjaninja78/invoicer/internal/types"
	"github.com/ginjaninja78/invoicer/internal/validation"
	"github.com/ginjaninja78/invoicer/pkg/utils"
)

// Operation names, used in logs, metrics and the report.
const (
	OpGenerate = "generate"
	OpSend     = "send"
)

// ErrRowOutOfRange is returned for a selected index the table does not have.
var ErrRowOutOfRange = errors.New("row out of range")

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is the result of processing one row.
type Outcome struct {
	// Index is the row index in the table.
	Index int

	// Label is the client name, or invoice_<index> when the row has none.
	Label string

	// Recipient is the address the invoice was (or would have been) sent to.
	Recipient string

	// File is the PDF file name (generate: path written; send: attachment
	// name).
	File string

	// Total is the formatted invoice total.
	Total string

	// Err is nil on success.
	Err error

	// Duration is the time spent on the row.
	Duration time.Duration
}

// OK reports whether the row succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Summary counts outcomes.
func Summary(outcomes []Outcome) (ok, failed int) {
	for _, o := range outcomes {
		if o.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Report converts outcomes into report records.
func Report(op string, outcomes []Outcome) []*utils.ReportRecord {
	records := make([]*utils.ReportRecord, 0, len(outcomes))
	for _, o := range outcomes {
		r := &utils.ReportRecord{
			Row:       o.Index,
			Client:    o.Label,
			Recipient: o.Recipient,
			File:      o.File,
			Total:     o.Total,
			Status:    "ok",
		}
		if o.Err != nil {
			r.Status = "error"
			r.Error = o.Err.Error()
		}
		records = append(records, r)
	}
	return records
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner processes rows against one template.
type Runner struct {
	cfg      *config.Config
	tpl      *doctemplate.Template
	filler   *filler.Filler
	renderer render.Renderer
	mailer   mailer.Mailer
	files    *utils.FileManager
	metrics  *Metrics
	logger   *log.Logger
}

// Deps are the collaborators of a Runner. Mailer may be nil when only
// generating; Metrics may be nil.
type Deps struct {
	Template *doctemplate.Template
	Filler   *filler.Filler
	Renderer render.Renderer
	Mailer   mailer.Mailer
	Files    *utils.FileManager
	Metrics  *Metrics
	Logger   *log.Logger
}

// New creates a Runner.
func New(cfg *config.Config, deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	files := deps.Files
	if files == nil {
		files = utils.NewFileManager(cfg.OutputDir)
	}
	return &Runner{
		cfg:      cfg,
		tpl:      deps.Template,
		filler:   deps.Filler,
		renderer: deps.Renderer,
		mailer:   deps.Mailer,
		files:    files,
		metrics:  deps.Metrics,
		logger:   logger,
	}
}

// Generate renders the selected rows and writes one PDF per row to the
// output directory.
func (r *Runner) Generate(ctx context.Context, table *types.Table, indices []int) []Outcome {
	if err := r.files.EnsureDirectories(); err != nil {
		return failAll(indices, err)
	}
	return r.run(ctx, OpGenerate, table, indices, r.generateRow)
}

// Send renders the selected rows and mails each PDF to the row's recipient.
// One recipient's failure does not stop the others.
func (r *Runner) Send(ctx context.Context, table *types.Table, indices []int) []Outcome {
	if r.mailer == nil {
		return failAll(indices, mailer.ErrNotConfigured)
	}
	return r.run(ctx, OpSend, table, indices, r.sendRow)
}

type rowFunc func(ctx context.Context, idx int, row types.Row) Outcome

func (r *Runner) run(ctx context.Context, op string, table *types.Table, indices []int, fn rowFunc) []Outcome {
	outcomes := make([]Outcome, len(indices))

	var g errgroup.Group
	g.SetLimit(max(r.cfg.Concurrency, 1))

	for pos, idx := range indices {
		g.Go(func() error {
			start := time.Now()

			var o Outcome
			switch {
			case idx < 0 || idx >= len(table.Rows):
				o = Outcome{Index: idx, Err: fmt.Errorf("row %d: %w", idx, ErrRowOutOfRange)}
			case ctx.Err() != nil:
				o = Outcome{Index: idx, Err: fmt.Errorf("row %d: %w", idx, ctx.Err())}
			default:
				o = fn(ctx, idx, table.Rows[idx])
			}
			o.Duration = time.Since(start)
			outcomes[pos] = o

			r.record(op, o)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (r *Runner) record(op string, o Outcome) {
	if r.metrics != nil {
		r.metrics.Observe(op, o)
	}
	if o.Err != nil {
		r.logger.Error("row failed", "op", op, "row", o.Index, "client", o.Label, "err", o.Err)
		return
	}
	r.logger.Info("row done", "op", op, "row", o.Index, "client", o.Label, "file", o.File, "total", o.Total)
}

// prepare fills the template for one row and computes its output name.
func (r *Runner) prepare(idx int, row types.Row) (*doctemplate.Filled, Outcome, error) {
	filled, inv, err := r.filler.Fill(r.tpl, row)
	if err != nil {
		return nil, Outcome{Index: idx, Label: fmt.Sprintf("invoice_%d", idx)}, err
	}

	client, _ := inv.Placeholders.Get("Client")
	invoiceNo, _ := inv.Placeholders.Get("No. Invoice")
	total, _ := inv.Placeholders.Get(filler.TotalField)

	o := Outcome{
		Index: idx,
		Label: client,
		Total: total,
		File: utils.GenerateOutputFileName(r.cfg.OutputNameFormat, utils.NameParams{
			Client:  client,
			Row:     idx,
			Invoice: invoiceNo,
		}),
	}
	if o.Label == "" {
		o.Label = fmt.Sprintf("invoice_%d", idx)
	}
	return filled, o, nil
}

func (r *Runner) generateRow(ctx context.Context, idx int, row types.Row) Outcome {
	filled, o, err := r.prepare(idx, row)
	if err != nil {
		o.Err = rowError(o, err)
		return o
	}

	pdf, err := r.renderer.Render(ctx, filled)
	if err != nil {
		o.Err = rowError(o, err)
		return o
	}

	o.File = r.files.Claim(o.File)
	path, err := r.files.WriteOutput(o.File, pdf)
	if err != nil {
		o.Err = rowError(o, err)
		return o
	}
	o.File = path
	return o
}

func (r *Runner) sendRow(ctx context.Context, idx int, row types.Row) Outcome {
	filled, o, err := r.prepare(idx, row)
	if err != nil {
		o.Err = rowError(o, err)
		return o
	}

	o.Recipient = row.Text(r.cfg.EmailColumn)
	if o.Recipient == "" {
		o.Err = rowError(o, mailer.ErrNoRecipient)
		return o
	}
	if err := validation.ValidateRecipient(o.Recipient); err != nil {
		o.Err = rowError(o, err)
		return o
	}

	pdf, err := r.renderer.Render(ctx, filled)
	if err != nil {
		o.Err = rowError(o, err)
		return o
	}

	err = r.mailer.Send(ctx, mailer.Message{
		To:      o.Recipient,
		Subject: r.cfg.Mail.Subject,
		Body:    r.cfg.Mail.Body,
		Attachment: mailer.Attachment{
			Filename: o.File,
			Data:     pdf,
		},
	})
	if err != nil {
		o.Err = rowError(o, err)
	}
	return o
}

// rowError prefixes err with the row it belongs to.
func rowError(o Outcome, err error) error {
	return fmt.Errorf("row %d (%s): %w", o.Index, o.Label, err)
}

func failAll(indices []int, err error) []Outcome {
	outcomes := make([]Outcome, len(indices))
	for i, idx := range indices {
		outcomes[i] = Outcome{Index: idx, Err: err}
	}
	return outcomes
}
