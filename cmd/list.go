// =============================================================================
// Invoicer - List Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer list <data.csv|data.xlsx> [--check-send]
//
// Prints every row as "index | client | email" so rows can be picked for
// generate and send, followed by the validation findings for the sheet.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/source"
	"github.com/ginjaninja78/invoicer/internal/validation"
)

// checkSend also validates recipients, as send would.
var checkSend bool

var listCmd = &cobra.Command{
	Use:   "list <data>",
	Short: "List the rows of a data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := source.Load(args[0], app.cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		clientColumn := app.cfg.Mapping().Column("Client")

		fmt.Fprintf(out, "%d row(s) in %s\n\n", len(table.Rows), table.SourceFile)
		indices := make([]int, len(table.Rows))
		for i, row := range table.Rows {
			indices[i] = i
			fmt.Fprintf(out, "%3d | %-30s | %s\n", i, row.Text(clientColumn), row.Text(app.cfg.EmailColumn))
		}

		if checkSend && !app.cfg.MailConfigured() {
			fmt.Fprintf(out, "\nMail transport %q has no credentials; send will fail (see GMAIL_SENDER, GMAIL_APP_PASSWORD, RESEND_API_KEY)\n", app.cfg.Mail.Transport)
		}

		result := validation.NewValidator(app.cfg).Validate(table, indices, checkSend)
		if len(result.Errors) > 0 {
			fmt.Fprintf(out, "\n%d error(s), %d warning(s):\n", result.ErrorCount, result.WarningCount)
			printFindings(out, result)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(
		&checkSend,
		"check-send",
		false,
		"Also check every row's recipient address",
	)
}
