package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/klytics/xlnotes/internal/extract"
)

const textColWidth = 60

// WriteTable renders comments as an aligned terminal table grouped by sheet.
func WriteTable(w io.Writer, comments []extract.Comment) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	var sheet string
	for _, c := range comments {
		if c.Sheet != sheet {
			sheet = c.Sheet
			fmt.Fprintln(w)
			bold.Fprintf(w, "%s\n", sheet)
		}

		cyan.Fprintf(w, "  %-6s", c.Cell)
		author := c.Author
		if c.AuthorInferred {
			author += " (inferred)"
		}
		yellow.Fprintf(w, " %s", author)
		if c.Created != "" {
			faint.Fprintf(w, "  %s", c.Created)
		}
		fmt.Fprintln(w)

		if c.CellContent != "" {
			faint.Fprintf(w, "         cell: %s\n", truncate(c.CellContent, textColWidth))
		}
		for _, line := range strings.Split(c.Text, "\n") {
			fmt.Fprintf(w, "         %s\n", line)
		}
		if c.Translated != "" && c.Translated != c.Text {
			faint.Fprint(w, "         → ")
			fmt.Fprintln(w, strings.ReplaceAll(c.Translated, "\n", "\n         "))
		}
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
