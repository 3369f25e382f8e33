// Package watch provides the "xlnotes watch" command for monitoring
// directories of workbooks.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klytics/xlnotes/internal/extract"
	"github.com/klytics/xlnotes/internal/report"
	w "github.com/klytics/xlnotes/internal/watch"
)

// NewCommand creates the "watch" command.
func NewCommand() *cobra.Command {
	var (
		recursive bool
		debounce  int
		reportDir string
	)

	cmd := &cobra.Command{
		Use:   "watch <directory> [directory...]",
		Short: "Watch directories and re-extract comments on change",
		Long: `Watch directories for new or modified .xlsx workbooks and extract
their comments on every change.

With --report-dir, each changed workbook produces a comment report named
<workbook>.comments.xlsx in that directory. Without it, comment counts are
logged to stderr.

Example:
  xlnotes watch ./reports --recursive --report-dir ./extracted`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := func(path string) (int, error) {
				res, err := extract.FromFile(path)
				if err != nil {
					return 0, err
				}
				if reportDir != "" && len(res.Comments) > 0 {
					base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
					out := filepath.Join(reportDir, base+".comments.xlsx")
					if err := report.WriteXLSX(res.Comments, out); err != nil {
						return len(res.Comments), err
					}
				}
				return len(res.Comments), nil
			}

			if reportDir != "" {
				if err := os.MkdirAll(reportDir, 0o755); err != nil {
					return fmt.Errorf("could not create report directory: %w", err)
				}
			}

			watcher, err := w.New(w.Config{
				Directories: args,
				Recursive:   recursive,
				Debounce:    debounce,
			}, handler)
			if err != nil {
				return err
			}

			fmt.Printf("Watching %s for workbook changes\n", strings.Join(args, ", "))
			fmt.Println("Press Ctrl+C to stop")

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\nStopping watcher...")
				cancel()
			}()

			return watcher.Start(ctx)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch directories recursively")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Write a comment report per changed workbook")

	return cmd
}
