// Package cmd contains all CLI commands for the xlnotes binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cmdauth "github.com/klytics/xlnotes/cmd/auth"
	"github.com/klytics/xlnotes/cmd/cloud"
	"github.com/klytics/xlnotes/cmd/completion"
	cmdconfig "github.com/klytics/xlnotes/cmd/config"
	"github.com/klytics/xlnotes/cmd/extract"
	"github.com/klytics/xlnotes/cmd/version"
	cmdwatch "github.com/klytics/xlnotes/cmd/watch"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlnotes",
		Short: "Extract comments and notes from Excel workbooks",
		Long: `xlnotes — every comment in your spreadsheets, from your terminal.

Extracts threaded comments and legacy cell notes from .xlsx workbooks,
resolves authors and cell context, and writes clean reports as tables,
CSV, JSON, or formatted .xlsx.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(extract.NewCommand())
	rootCmd.AddCommand(cloud.NewCommand())
	rootCmd.AddCommand(cmdauth.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
