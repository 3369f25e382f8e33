// Package cloud provides commands for reading workbook comments over the
// Microsoft Graph API.
package cloud

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/xlnotes/internal/auth"
	"github.com/klytics/xlnotes/internal/graph"
	"github.com/klytics/xlnotes/internal/output"
	"github.com/klytics/xlnotes/internal/report"
)

// NewCommand returns the cloud command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Read comments from workbooks in OneDrive",
		Long: `Read comments from .xlsx workbooks stored in OneDrive without
downloading them, using the Microsoft Graph workbook API.

Requires authentication: xlnotes auth login`,
	}

	cmd.AddCommand(newCommentsCommand())
	cmd.AddCommand(newSheetsCommand())

	return cmd
}

func newCommentsCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "comments <drive-path>",
		Short: "List comments in a cloud workbook",
		Long: `List all comments in a workbook stored in OneDrive.

Example:
  xlnotes cloud comments "Documents/budget.xlsx"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			ctx := cmd.Context()

			client, err := auth.RequireAuth(ctx)
			if err != nil {
				return err
			}

			wb := graph.NewWorkbook(client)
			item, err := wb.ResolveItem(ctx, args[0])
			if err != nil {
				return err
			}
			if !strings.HasSuffix(strings.ToLower(item.Name), ".xlsx") {
				return fmt.Errorf("%s is not an .xlsx workbook", item.Name)
			}

			raw, err := wb.ListComments(ctx, item.ID)
			if err != nil {
				return err
			}
			comments := graph.Normalize(raw)

			if len(comments) == 0 {
				if jsonFlag {
					return output.PrintJSON("cloud comments", comments)
				}
				fmt.Printf("No comments found in %s\n", item.Name)
				return nil
			}

			if outPath != "" {
				if err := report.WriteXLSX(comments, outPath); err != nil {
					return err
				}
				fmt.Printf("Wrote %d comment(s) to %s\n", len(comments), outPath)
				return nil
			}

			if jsonFlag {
				return output.PrintJSON("cloud comments", comments)
			}

			report.WriteTable(os.Stdout, comments)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write an .xlsx comment report to this path")

	return cmd
}

func newSheetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <drive-path>",
		Short: "List worksheets in a cloud workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			ctx := cmd.Context()

			client, err := auth.RequireAuth(ctx)
			if err != nil {
				return err
			}

			wb := graph.NewWorkbook(client)
			item, err := wb.ResolveItem(ctx, args[0])
			if err != nil {
				return err
			}

			sheets, err := wb.ListWorksheets(ctx, item.ID)
			if err != nil {
				return err
			}

			if jsonFlag {
				return output.PrintJSON("cloud sheets", sheets)
			}

			bold := color.New(color.Bold)
			bold.Printf("%s — %d worksheet(s)\n", item.Name, len(sheets))
			for _, s := range sheets {
				fmt.Printf("  %2d  %s\n", s.Position+1, s.Name)
			}
			return nil
		},
	}
}
