package workbook

import (
	"fmt"
	"strings"
)

// Note is one legacy-style cell note. Legacy notes carry no structured author
// or timestamp metadata; Author may come from the comments part's author
// table, or be inferred from the note body, in which case AuthorInferred
// is set and the body keeps the author prefix unchanged.
type Note struct {
	Sheet          string
	Cell           string
	Text           string
	Author         string
	AuthorInferred bool
}

// Notes collects every legacy note in the workbook, across all sheets. A note
// can be anchored to an otherwise empty cell; reading the comment part
// directly covers those too. Sheets whose comments cannot be read contribute
// nothing rather than failing the scan.
func (r *Reader) Notes() []Note {
	var notes []Note
	for _, sheet := range r.f.GetSheetList() {
		comments, err := r.f.GetComments(sheet)
		if err != nil {
			continue
		}
		for _, c := range comments {
			note := Note{Sheet: sheet, Cell: c.Cell, Author: c.Author}

			// Text precedence: rich-text runs, then the plain text
			// field, then a raw dump so nothing is silently lost.
			var runs []string
			for _, p := range c.Paragraph {
				if p.Text != "" {
					runs = append(runs, p.Text)
				}
			}
			switch {
			case len(runs) > 0:
				note.Text = strings.Join(runs, "")
				if note.Author == "" {
					if inferred, ok := authorBeforeColon(runs[0]); ok {
						note.Author = inferred
						note.AuthorInferred = true
					}
				}
			case c.Text != "":
				note.Text = c.Text
			default:
				note.Text = fmt.Sprintf("%+v", c)
			}

			if strings.TrimSpace(note.Text) == "" {
				continue
			}
			notes = append(notes, note)
		}
	}
	return notes
}

// authorBeforeColon guesses an author name from the "Name:" convention Excel
// uses for the first run of a note. Best effort only; the inferred prefix is
// left in the body.
func authorBeforeColon(run string) (string, bool) {
	idx := strings.Index(run, ":")
	if idx <= 0 {
		return "", false
	}
	name := strings.TrimSpace(run[:idx])
	if name == "" || strings.ContainsAny(name, "\n") {
		return "", false
	}
	return name, true
}
