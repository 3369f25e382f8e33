package graph

import (
	"strings"

	"github.com/klytics/xlnotes/internal/extract"
	"github.com/klytics/xlnotes/internal/normalize"
)

// Normalize converts Graph workbook comments into the same record shape the
// file extractor produces, keyed by (sheet, cell). Replies are folded into
// the parent record so each anchor appears once.
func Normalize(comments []Comment) []extract.Comment {
	var out []extract.Comment
	for _, c := range comments {
		sheet, cell := SplitAnchor(c.Anchor)
		text := strings.TrimSpace(normalize.CleanCommentBody(c.Content))
		if text == "" {
			continue
		}

		var b strings.Builder
		b.WriteString(text)
		for _, r := range c.Replies {
			reply := strings.TrimSpace(normalize.CleanCommentBody(r.Content))
			if reply == "" {
				continue
			}
			b.WriteString("\n")
			if r.Author != "" {
				b.WriteString(r.Author)
				b.WriteString(": ")
			}
			b.WriteString(reply)
		}

		out = append(out, extract.Comment{
			Sheet:  sheet,
			Cell:   cell,
			Text:   b.String(),
			Author: c.Author,
		})
	}
	return out
}
