package ooxml

import (
	"strings"

	"github.com/klytics/xlnotes/internal/container"
)

// UnknownAuthor is reported when a comment's person ID has no entry in the
// persons table. Extraction continues; authorship is simply unattributed.
const UnknownAuthor = "Unknown author"

// ThreadedComment is one modern comment recovered from a threaded-comment
// part. Cell is the literal A1-style reference from the file.
type ThreadedComment struct {
	Sheet   string
	Cell    string
	Author  string
	Text    string
	Created string
}

// ExtractThreaded parses every threaded-comment part in the archive. The
// second return value reports whether any such part existed at all, which is
// distinct from "existed but held no comments": callers use it to decide
// which annotation subsystem the file was authored with.
//
// A malformed part contributes nothing; a person ID with no persons entry
// resolves to UnknownAuthor. Records keep archive part order.
func ExtractThreaded(a *container.Archive, r *Resolver) ([]ThreadedComment, bool) {
	parts := a.Match(func(name string) bool {
		return strings.HasPrefix(name, "xl/threadedComments/")
	})
	if len(parts) == 0 {
		return nil, false
	}

	var records []ThreadedComment
	for _, part := range parts {
		var tc xmlThreadedComments
		if _, err := a.XML(part, &tc); err != nil {
			continue
		}

		sheet := r.SheetForCommentPart(part)
		for _, c := range tc.Comments {
			text := strings.TrimSpace(c.Text)
			if text == "" {
				continue
			}
			author, ok := r.PersonName(c.PersonID)
			if !ok {
				author = UnknownAuthor
			}
			records = append(records, ThreadedComment{
				Sheet:   sheet,
				Cell:    c.Ref,
				Author:  author,
				Text:    text,
				Created: c.Created,
			})
		}
	}

	return records, true
}
