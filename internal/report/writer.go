// Package report renders extracted comments into tabular output formats:
// a styled .xlsx workbook, CSV, or JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/xlnotes/internal/extract"
)

const sheetName = "Comments"

// HasTranslations reports whether any record carries translated text. The
// translation column is added only when it would hold something.
func HasTranslations(comments []extract.Comment) bool {
	for _, c := range comments {
		if c.Translated != "" {
			return true
		}
	}
	return false
}

// Header returns the report column names for the given record set.
func Header(comments []extract.Comment) []string {
	h := []string{"Sheet", "Cell", "Cell Content", "Comment", "Author", "Created"}
	if HasTranslations(comments) {
		h = append(h, "Translated")
	}
	return h
}

// Row flattens one record into report columns, matching Header's layout.
func Row(c extract.Comment, withTranslation bool) []string {
	author := c.Author
	if c.AuthorInferred {
		author += " (inferred)"
	}
	row := []string{c.Sheet, c.Cell, c.CellContent, c.Text, author, c.Created}
	if withTranslation {
		row = append(row, c.Translated)
	}
	return row
}

// WriteXLSX writes the comments as a styled workbook: bold header row,
// frozen top pane, readable column widths.
func WriteXLSX(comments []extract.Comment, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return fmt.Errorf("could not rename sheet: %w", err)
	}

	withTranslation := HasTranslations(comments)
	header := Header(comments)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return fmt.Errorf("could not create header style: %w", err)
	}

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("could not write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("could not style header: %w", err)
	}

	for i, c := range comments {
		for col, val := range Row(c, withTranslation) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("invalid cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return fmt.Errorf("could not set cell %s: %w", cell, err)
			}
		}
	}

	// Widths tuned for the content each column typically holds.
	widths := []float64{18, 8, 30, 50, 20, 22, 50}
	for col := 0; col < len(header); col++ {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, widths[col]); err != nil {
			return fmt.Errorf("could not set column width: %w", err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("could not freeze header row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the comments as CSV with a header row.
func WriteCSV(comments []extract.Comment, w io.Writer) error {
	cw := csv.NewWriter(w)
	withTranslation := HasTranslations(comments)

	if err := cw.Write(Header(comments)); err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}
	for _, c := range comments {
		if err := cw.Write(Row(c, withTranslation)); err != nil {
			return fmt.Errorf("could not write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the comments as pretty-printed JSON.
func WriteJSON(comments []extract.Comment, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(comments)
}
