// Package normalize turns cell values and comment bodies into plain display
// strings for the report.
package normalize

import (
	"regexp"
	"strings"

	"github.com/klytics/xlnotes/internal/workbook"
)

// Unreadable is reported for a cell that errored during reading.
const Unreadable = "(could not be read)"

// Unsupported is the last-resort rendering for a value with no raw dump.
const Unsupported = "(unsupported value)"

// Render converts a cell value variant into a display string. The switch is
// exhaustive over workbook.Kind; unknown shapes surface as Unsupported or
// their raw dump, never as an empty string.
func Render(v workbook.Value) string {
	switch v.Kind {
	case workbook.KindEmpty:
		return ""
	case workbook.KindScalar, workbook.KindDateTime:
		return v.Scalar
	case workbook.KindRichText:
		return strings.Join(v.Runs, "")
	case workbook.KindFormula:
		if v.Cached != "" {
			return v.Cached
		}
		return "=" + v.Formula
	case workbook.KindHyperlink:
		if v.Display != "" {
			return v.Display
		}
		return v.Target
	case workbook.KindArray:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, Render(item))
		}
		return strings.Join(parts, ", ")
	case workbook.KindUnreadable:
		return Unreadable
	default: // KindOpaque and anything future
		if v.Raw != "" {
			return v.Raw
		}
		return Unsupported
	}
}

// Comment bodies exported through sync tooling arrive wrapped in boilerplate:
// a separator banner of = characters followed by an opaque ID# author tag,
// or a bare tag line. cleanPatterns strips those plus any leading blank lines
// left behind.
var cleanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^={3,}[ \t]*\r?\n?ID#[A-Za-z0-9._-]+[ \t]*\r?\n?`),
	regexp.MustCompile(`={3,}[ \t]*ID#[A-Za-z0-9._-]+`),
	regexp.MustCompile(`(?m)^ID#[A-Za-z0-9._-]+[ \t]*\r?\n?`),
}

var leadingBlank = regexp.MustCompile(`^(?:[ \t]*\r?\n)+`)

// CleanCommentBody strips extractor-added boilerplate from a comment body.
// Applying it to already-clean text is a no-op.
func CleanCommentBody(text string) string {
	for _, p := range cleanPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return leadingBlank.ReplaceAllString(text, "")
}
