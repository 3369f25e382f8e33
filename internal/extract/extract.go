// Package extract runs the full annotation-extraction pipeline over one
// workbook: threaded comments from the OOXML part graph, legacy notes from
// the worksheet scan, reconciled into a single ordered report.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klytics/xlnotes/internal/container"
	"github.com/klytics/xlnotes/internal/normalize"
	"github.com/klytics/xlnotes/internal/ooxml"
	"github.com/klytics/xlnotes/internal/workbook"
)

// Comment is the normalized, display-ready record the report sink accepts.
// Created is empty for legacy notes, which carry no timestamp. Translated is
// filled in by the translation collaborator, not by extraction.
type Comment struct {
	Sheet          string `json:"sheet"`
	Cell           string `json:"cell"`
	CellContent    string `json:"cellContent"`
	Text           string `json:"text"`
	Author         string `json:"author"`
	Created        string `json:"created,omitempty"`
	Translated     string `json:"translated,omitempty"`
	AuthorInferred bool   `json:"authorInferred,omitempty"`
}

// Result carries the extracted comments plus which annotation subsystems the
// file actually used.
type Result struct {
	Comments    []Comment
	HasThreaded bool // at least one threaded-comment part existed
	HasNotes    bool // at least one legacy note was found
}

// FromFile extracts all comments from an .xlsx file on disk.
func FromFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes extracts all comments from workbook bytes. The filename is used
// only for format sniffing and error messages.
//
// Only two failures abort a run: an unreadable container and an unsupported
// top-level format. Everything below that degrades: malformed optional parts
// contribute nothing, unreadable cells render as a sentinel, and a workbook
// the cell reader cannot open loses legacy notes but keeps threaded comments.
func FromBytes(filename string, data []byte) (*Result, error) {
	if err := container.Sniff(filename, data); err != nil {
		return nil, err
	}

	a, err := container.Open(data)
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", filename, err)
	}

	resolver, err := ooxml.NewResolver(a)
	if err != nil {
		return nil, err
	}

	threaded, hasThreaded := ooxml.ExtractThreaded(a, resolver)

	// The cell reader has its own load path. If it fails, cell contents
	// become unreadable sentinels and the legacy-note pass is skipped.
	var reader *workbook.Reader
	if r, err := workbook.OpenBytes(data); err == nil {
		reader = r
		defer reader.Close()
	}

	result := &Result{HasThreaded: hasThreaded}

	// Threaded pass first: its keys form the exclusion set that keeps the
	// legacy pass from double-reporting a cell.
	seen := make(map[string]bool)
	for _, tc := range threaded {
		text := strings.TrimSpace(normalize.CleanCommentBody(tc.Text))
		if text == "" {
			continue
		}
		result.Comments = append(result.Comments, Comment{
			Sheet:       tc.Sheet,
			Cell:        tc.Cell,
			CellContent: cellContent(reader, tc.Sheet, tc.Cell),
			Text:        text,
			Author:      tc.Author,
			Created:     tc.Created,
		})
		seen[tc.Sheet+"!"+tc.Cell] = true
	}

	if reader != nil {
		for _, note := range reader.Notes() {
			if seen[note.Sheet+"!"+note.Cell] {
				continue
			}
			text := strings.TrimSpace(normalize.CleanCommentBody(note.Text))
			if text == "" {
				continue
			}
			result.HasNotes = true
			result.Comments = append(result.Comments, Comment{
				Sheet:          note.Sheet,
				Cell:           note.Cell,
				CellContent:    cellContent(reader, note.Sheet, note.Cell),
				Text:           text,
				Author:         note.Author,
				AuthorInferred: note.AuthorInferred,
			})
			seen[note.Sheet+"!"+note.Cell] = true
		}
	}

	return result, nil
}

func cellContent(reader *workbook.Reader, sheet, cell string) string {
	if reader == nil {
		return normalize.Unreadable
	}
	return normalize.Render(reader.CellValue(sheet, cell))
}
