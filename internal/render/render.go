// =============================================================================
// Invoicer - PDF Rendering
// =============================================================================
//
// A Renderer turns a filled document into PDF bytes. Two implementations are
// provided:
//
//   | Kind   | How                                  | Fidelity              |
//   |--------|--------------------------------------|-----------------------|
//   | office | LibreOffice --headless --convert-to  | full layout of the    |
//   |        | in a per-call temporary directory    | template              |
//   | native | text outline laid out with fpdf      | text and tables only, |
//   |        |                                      | no template styling   |
//
// Every call is independent. Renderers hold no per-call state and can be
// used from several goroutines.
//
// =============================================================================

package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/doctemplate"
)

// Renderer converts a filled document to PDF.
type Renderer interface {
	Render(ctx context.Context, doc *doctemplate.Filled) ([]byte, error)
}

// ErrNoOutput is returned when a conversion finished without producing a PDF.
var ErrNoOutput = errors.New("converter produced no output")

// Error reports a failed render step.
type Error struct {
	Op  string // step name, e.g. "convert", "layout"
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("render %s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// New returns the renderer selected by the configuration.
func New(cfg config.RendererConfig) (Renderer, error) {
	switch cfg.Kind {
	case "office", "":
		return NewOffice(cfg.Binary, cfg.Timeout), nil
	case "native":
		return NewNative(cfg.PageSize), nil
	default:
		return nil, fmt.Errorf("unknown renderer kind %q", cfg.Kind)
	}
}
