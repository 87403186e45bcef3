// =============================================================================
// Invoicer - Sample Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer sample [--keep-filled]
//
// Fills the template with a built-in sample row (three priced services, the
// other lines blank), renders it, and writes invoice_test.pdf to output_dir.
// Use it to check where every placeholder lands before a real run.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/doctemplate"
	"github.com/ginjaninja78/invoicer/internal/filler"
	"github.com/ginjaninja78/invoicer/internal/render"
	"github.com/ginjaninja78/invoicer/internal/source"
	"github.com/ginjaninja78/invoicer/pkg/utils"
)

const sampleName = "invoice_test"

// keepFilled also writes the filled document next to the PDF.
var keepFilled bool

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Render the template with sample data to invoice_test.pdf",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := doctemplate.Load(templatePath())
		if err != nil {
			return err
		}
		f, err := filler.New(app.cfg)
		if err != nil {
			return err
		}
		renderer, err := render.New(app.cfg.Renderer)
		if err != nil {
			return err
		}

		filled, inv, err := f.Fill(tpl, source.SampleTable(app.cfg).Rows[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, token := range inv.Placeholders.Tokens() {
			fmt.Fprintf(out, "  %-20s %s\n", token, inv.Placeholders.Value(token))
		}

		pdf, err := renderer.Render(cmd.Context(), filled)
		if err != nil {
			return err
		}

		fm := utils.NewFileManager(app.cfg.OutputDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		if keepFilled {
			path, err := fm.WriteOutput(sampleName+filled.Kind.Ext(), filled.Data)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nFilled:  %s\n", path)
		}
		path, err := fm.WriteOutput(sampleName+".pdf", pdf)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Sample:  %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().BoolVar(
		&keepFilled,
		"keep-filled",
		false,
		"Also write the filled template (invoice_test.docx or .xlsx)",
	)
}
