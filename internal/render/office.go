package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/invoicer/internal/doctemplate"
)

// Office converts documents by running LibreOffice headless.
type Office struct {
	binary  string
	timeout time.Duration

	// tempBase is the parent of the per-call work directories. Empty means
	// os.TempDir().
	tempBase string
}

// NewOffice returns a converter running binary (usually "soffice"). A zero
// timeout means no limit beyond the caller's context.
func NewOffice(binary string, timeout time.Duration) *Office {
	if binary == "" {
		binary = "soffice"
	}
	return &Office{binary: binary, timeout: timeout}
}

// Render writes the document into a fresh temporary directory, converts it
// there and returns the PDF. The directory is removed on every return path.
func (o *Office) Render(ctx context.Context, doc *doctemplate.Filled) ([]byte, error) {
	dir, err := os.MkdirTemp(o.tempBase, "invoicer-*")
	if err != nil {
		return nil, newError("tempdir", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "invoice"+doc.Kind.Ext())
	if err := os.WriteFile(input, doc.Data, 0o600); err != nil {
		return nil, newError("write", err)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	// A private profile directory lets several conversions run at once;
	// LibreOffice refuses to share one between processes.
	profile := "file://" + filepath.ToSlash(filepath.Join(dir, "profile"))

	cmd := exec.CommandContext(ctx, o.binary,
		"-env:UserInstallation="+profile,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", dir,
		input,
	)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, newError("convert", ctxErr)
		}
		if msg := strings.TrimSpace(output.String()); msg != "" {
			return nil, newError("convert", fmt.Errorf("%w: %s", err, msg))
		}
		return nil, newError("convert", err)
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "invoice.pdf"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, newError("convert", ErrNoOutput)
	}
	if err != nil {
		return nil, newError("read", err)
	}
	return pdf, nil
}
