// =============================================================================
// Invoicer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoicer)
//   ├── listCmd     (invoicer list <data>)
//   ├── generateCmd (invoicer generate <data>)
//   ├── sendCmd     (invoicer send <data>)
//   ├── sampleCmd   (invoicer sample)
//   └── versionCmd  (invoicer version)
//
// CONFIGURATION:
//   The root command loads the configuration once, before any subcommand
//   runs, and builds the logger from it. Subcommands receive both through
//   the package-level app value and never reload them.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoicer/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file (--config).
var cfgFile string

// templateFile overrides the configured template (--template).
var templateFile string

// verbose enables debug logging when set to true.
var verbose bool

// app holds what every subcommand needs. It is set in PersistentPreRunE.
var app struct {
	cfg    *config.Config
	logger *log.Logger
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicer - Fill invoice templates from spreadsheet rows and send them",
	Long: `Invoicer turns rows of a CSV or XLSX sheet into PDF invoices.

Every row fills a .docx or .xlsx template containing {{Name}} placeholders,
is rendered to PDF, and is either written to the output directory or mailed
to the address in the row's E-mail column.

Example Usage:
  invoicer list invoices.csv                  # Show the rows of a sheet
  invoicer sample                             # Calibrate the template
  invoicer generate invoices.csv --all        # Write one PDF per row
  invoicer send invoices.xlsx --rows 0,2-4    # Mail the selected rows`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		app.cfg = cfg
		app.logger = newLogger(cfg.LogLevel, verbose)
		app.logger.Debug("configuration loaded", "file", cfgFile, "template", templatePath())
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (missing file means defaults)",
	)

	rootCmd.PersistentFlags().StringVarP(
		&templateFile,
		"template",
		"t",
		"",
		"Template to fill (overrides the configured template)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// newLogger builds the process logger. An unknown level falls back to info.
func newLogger(level string, verbose bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "invoicer",
	})
}

func templatePath() string {
	if templateFile != "" {
		return templateFile
	}
	return app.cfg.TemplatePath
}
