// =============================================================================
// Invoicer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Invoicer CLI application. It hands
// control to the Cobra command tree in the cmd package.
//
// USAGE:
//   invoicer list <data>       - Show the rows of a CSV or XLSX sheet
//   invoicer sample            - Render the template with sample data
//   invoicer generate <data>   - Write one PDF invoice per selected row
//   invoicer send <data>       - Email one PDF invoice per selected row
//   invoicer version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (parsing, filling, rendering, mailing)
//   - pkg/           : Shared output file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/invoicer/cmd"
)

func main() {
	cmd.Execute()
}
