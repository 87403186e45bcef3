// =============================================================================
// Invoicer - Send Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer send <data> (--rows 0,2,5-7 | --all) [--metrics-file path]
//
// Renders each selected row and mails the PDF to the address in the row's
// email_column. Credentials come from the environment (or .env):
//   smtp:   GMAIL_SENDER, GMAIL_APP_PASSWORD (SMTP_HOST, SMTP_PORT optional)
//   resend: GMAIL_SENDER, RESEND_API_KEY
//
// A row without a recipient fails on its own; the remaining rows are sent.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/batch"
)

var sendCmd = &cobra.Command{
	Use:   "send <data>",
	Short: "Email one PDF invoice to each selected row's recipient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args[0], batch.OpSend)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	addSelectionFlags(sendCmd)
}
