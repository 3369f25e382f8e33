// Package workbook reads live cell data and legacy notes from an .xlsx file
// through excelize. It is independent of the raw part-graph walker: even when
// the relationship chain in a file is broken, this reader can usually still
// open the workbook and recover cell values.
package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Kind discriminates the closed set of cell value shapes. The normalizer
// switches over this exhaustively instead of probing object shape per call.
type Kind int

const (
	// KindEmpty is a cell with no stored value.
	KindEmpty Kind = iota
	// KindScalar is a plain string, number or boolean rendering.
	KindScalar
	// KindRichText is a cell holding multiple formatted text runs.
	KindRichText
	// KindFormula is a formula cell, with the cached result when present.
	KindFormula
	// KindHyperlink is a cell carrying a hyperlink.
	KindHyperlink
	// KindDateTime is a date- or time-formatted numeric cell.
	KindDateTime
	// KindArray is a list of sub-values.
	KindArray
	// KindOpaque is a value of no recognized shape, kept as a raw dump so
	// nothing silently degrades to an empty string.
	KindOpaque
	// KindUnreadable marks a cell that errored during reading.
	KindUnreadable
)

// Value is one cell's content as a tagged variant. Only the fields relevant
// to its Kind are populated.
type Value struct {
	Kind    Kind
	Scalar  string
	Runs    []string
	Formula string
	Cached  string
	Display string
	Target  string
	Items   []Value
	Raw     string
}

// Reader wraps an open excelize workbook.
type Reader struct {
	f *excelize.File
}

// OpenBytes opens a workbook from memory.
func OpenBytes(data []byte) (*Reader, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	return &Reader{f: f}, nil
}

// Close releases the underlying workbook.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Sheets returns the worksheet names in workbook order.
func (r *Reader) Sheets() []string {
	return r.f.GetSheetList()
}

// CellValue reads one cell as a tagged variant. Errors reading the cell are
// absorbed into KindUnreadable so a single corrupt cell cannot abort an
// extraction run.
func (r *Reader) CellValue(sheet, cell string) Value {
	if formula, err := r.f.GetCellFormula(sheet, cell); err == nil && formula != "" {
		cached, _ := r.f.GetCellValue(sheet, cell)
		return Value{Kind: KindFormula, Formula: formula, Cached: cached}
	}

	if has, target, err := r.f.GetCellHyperLink(sheet, cell); err == nil && has {
		display, derr := r.f.GetCellValue(sheet, cell)
		if derr != nil {
			return Value{Kind: KindUnreadable}
		}
		return Value{Kind: KindHyperlink, Display: display, Target: target}
	}

	if runs, err := r.f.GetCellRichText(sheet, cell); err == nil && len(runs) > 1 {
		texts := make([]string, 0, len(runs))
		for _, run := range runs {
			texts = append(texts, run.Text)
		}
		return Value{Kind: KindRichText, Runs: texts}
	}

	ctype, err := r.f.GetCellType(sheet, cell)
	if err != nil {
		return Value{Kind: KindUnreadable}
	}

	display, err := r.f.GetCellValue(sheet, cell)
	if err != nil {
		return Value{Kind: KindUnreadable}
	}
	if display == "" {
		return Value{Kind: KindEmpty}
	}

	if ctype == excelize.CellTypeDate {
		return Value{Kind: KindDateTime, Scalar: display}
	}

	return Value{Kind: KindScalar, Scalar: display}
}
