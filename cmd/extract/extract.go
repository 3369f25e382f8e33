// Package extract provides the "xlnotes extract" command.
package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/xlnotes/internal/config"
	"github.com/klytics/xlnotes/internal/extract"
	"github.com/klytics/xlnotes/internal/output"
	"github.com/klytics/xlnotes/internal/progress"
	"github.com/klytics/xlnotes/internal/report"
	"github.com/klytics/xlnotes/internal/translate"
)

// NewCommand returns the extract command.
func NewCommand() *cobra.Command {
	var (
		outPath     string
		format      string
		doTranslate bool
		targetLang  string
	)

	cmd := &cobra.Command{
		Use:   "extract <file.xlsx> [file.xlsx...]",
		Short: "Extract comments and notes from Excel workbooks",
		Long: `Extract threaded comments and legacy notes from .xlsx workbooks.

Threaded comments carry author display names and timestamps; legacy notes
carry neither, so the author is inferred from the note text where possible.
When both kinds annotate the same cell, the threaded comment wins.

Examples:
  xlnotes extract report.xlsx
  xlnotes extract report.xlsx --format csv
  xlnotes extract report.xlsx --out comments.xlsx
  xlnotes extract --translate --lang de report.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			comments, err := extractAll(args)
			if err != nil {
				return err
			}

			if len(comments) == 0 {
				if jsonFlag {
					return output.PrintJSON("extract", []extract.Comment{})
				}
				fmt.Printf("No comments found in %s\n", strings.Join(args, ", "))
				return nil
			}

			if doTranslate {
				tcfg := translate.Config{
					Enabled:    true,
					Provider:   cfg.Translate.Provider,
					APIKey:     cfg.Translate.APIKey,
					Region:     cfg.Translate.Region,
					TargetLang: cfg.Translate.TargetLang,
				}
				if targetLang != "" {
					tcfg.TargetLang = targetLang
				}
				if err := translateAll(cmd.Context(), tcfg, comments); err != nil {
					return err
				}
			}

			if outPath != "" {
				if err := report.WriteXLSX(comments, outPath); err != nil {
					return err
				}
				fmt.Printf("Wrote %d comment(s) to %s\n", len(comments), outPath)
				return nil
			}

			if jsonFlag {
				return output.PrintJSON("extract", comments)
			}

			switch format {
			case "csv":
				return report.WriteCSV(comments, os.Stdout)
			case "json":
				return report.WriteJSON(comments, os.Stdout)
			case "table", "":
				var sb strings.Builder
				report.WriteTable(&sb, comments)
				if output.ShouldPage(sb.String(), 40) {
					return output.Page(sb.String())
				}
				fmt.Print(sb.String())
				return nil
			default:
				return fmt.Errorf("unsupported format: %s (supported: table, csv, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write an .xlsx comment report to this path")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, csv, json")
	cmd.Flags().BoolVar(&doTranslate, "translate", false, "Translate comment text")
	cmd.Flags().StringVar(&targetLang, "lang", "", "Translation target language (default from config)")

	return cmd
}

// extractAll runs extraction over every file, prefixing each comment's sheet
// with the filename when more than one workbook is given.
func extractAll(paths []string) ([]extract.Comment, error) {
	var all []extract.Comment

	var bar *progress.Bar
	if len(paths) > 1 {
		bar = progress.New("Extracting", len(paths))
	}

	for _, path := range paths {
		res, err := extract.FromFile(path)
		if err != nil {
			return nil, err
		}
		for _, c := range res.Comments {
			if len(paths) > 1 {
				c.Sheet = path + " / " + c.Sheet
			}
			all = append(all, c)
		}
		if bar != nil {
			bar.Increment(path)
		}
	}
	if bar != nil {
		bar.Finish(fmt.Sprintf("%d comment(s)", len(all)))
	}

	return all, nil
}

// translateAll fills in the Translated field of every comment in place.
func translateAll(ctx context.Context, tcfg translate.Config, comments []extract.Comment) error {
	tr, err := translate.New(tcfg)
	if err != nil {
		return err
	}
	if tr.Name() == "none" {
		color.New(color.FgYellow).Fprintln(os.Stderr,
			"Translation not configured — run: xlnotes config set translate.api_key <key>")
		return nil
	}

	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}

	spinner := progress.NewSpinner(fmt.Sprintf("Translating %d comment(s) via %s", len(texts), tr.Name()))
	spinner.Start()
	translated, err := tr.TranslateBatch(ctx, texts)
	if err != nil {
		spinner.Stop("failed")
		return fmt.Errorf("translation failed: %w", err)
	}
	spinner.Stop("done")

	for i := range comments {
		comments[i].Translated = translated[i]
	}
	return nil
}
