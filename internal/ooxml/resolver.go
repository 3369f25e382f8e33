// Package ooxml walks the relationship graph of an .xlsx container and
// extracts threaded comments from it.
//
// Threaded comments live in dedicated parts (xl/threadedComments/...) that
// reference their worksheet only indirectly: the worksheet's own relationship
// file points at the comment part, the workbook relationship file maps the
// worksheet part to a relationship ID, and the workbook manifest maps that ID
// to a sheet name. Real files break individual links in this chain, so the
// resolver layers fallbacks instead of failing.
package ooxml

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/klytics/xlnotes/internal/container"
)

const (
	workbookPart     = "xl/workbook.xml"
	workbookRelsPart = "xl/_rels/workbook.xml.rels"
	personsPart      = "xl/persons/person.xml"

	// UnknownDisplayName stands in for a persons entry without a displayName.
	UnknownDisplayName = "(unknown)"
)

// Person identifies a threaded-comment author.
type Person struct {
	ID          string
	DisplayName string
	UserID      string
}

// Sheet is one worksheet declared in the workbook manifest.
type Sheet struct {
	SheetID string
	Name    string
	RelID   string
}

// Resolver holds the cross-reference maps connecting sheets, relationship IDs
// and threaded-comment parts for one archive. Build it once per extraction.
type Resolver struct {
	sheets           []Sheet
	persons          map[string]Person
	sheetNameByRelID map[string]string
	relIDBySheetPath map[string]string
	sheetByPart      map[string]string // threaded-comment part path -> sheet name
}

var sheetPartPattern = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)
var numericSuffixPattern = regexp.MustCompile(`(\d+)\.xml$`)

// NewResolver builds the resolver maps from the archive. Every source part is
// optional except the workbook manifest: a present but unparsable
// xl/workbook.xml aborts the extraction.
func NewResolver(a *container.Archive) (*Resolver, error) {
	r := &Resolver{
		persons:          make(map[string]Person),
		sheetNameByRelID: make(map[string]string),
		relIDBySheetPath: make(map[string]string),
		sheetByPart:      make(map[string]string),
	}

	r.loadPersons(a)

	var wb xmlWorkbook
	found, err := a.XML(workbookPart, &wb)
	if found && err != nil {
		return nil, fmt.Errorf("could not read the workbook manifest: %w", err)
	}
	for _, s := range wb.Sheets {
		r.sheets = append(r.sheets, Sheet{SheetID: s.SheetID, Name: s.Name, RelID: s.RelID})
		if s.RelID != "" {
			r.sheetNameByRelID[s.RelID] = s.Name
		}
	}

	var wbRels xmlRelationships
	if _, err := a.XML(workbookRelsPart, &wbRels); err == nil {
		for _, rel := range wbRels.Relationships {
			target := resolveTarget("xl", rel.Target)
			if sheetPartPattern.MatchString(target) {
				r.relIDBySheetPath[target] = rel.ID
			}
		}
	}

	r.probeSheetRels(a)

	return r, nil
}

func (r *Resolver) loadPersons(a *container.Archive) {
	// The canonical location is xl/persons/person.xml but some producers
	// number the part, so sweep the whole directory.
	parts := a.Match(func(name string) bool {
		return strings.HasPrefix(name, "xl/persons/")
	})
	if len(parts) == 0 {
		parts = []string{personsPart}
	}
	for _, part := range parts {
		var pl xmlPersonList
		if _, err := a.XML(part, &pl); err != nil {
			continue
		}
		for _, p := range pl.Persons {
			name := p.DisplayName
			if name == "" {
				name = UnknownDisplayName
			}
			r.persons[p.ID] = Person{ID: p.ID, DisplayName: name, UserID: p.UserID}
		}
	}
}

// probeSheetRels inspects each worksheet's own relationship file for
// threaded-comment targets. The probe set is driven by the worksheet parts
// actually present in the container, since manifest order and physical file
// numbering are not guaranteed to coincide.
func (r *Resolver) probeSheetRels(a *container.Archive) {
	sheetParts := a.Match(func(name string) bool {
		return sheetPartPattern.MatchString(name)
	})

	for _, sheetPart := range sheetParts {
		base := path.Base(sheetPart)
		relsPart := "xl/worksheets/_rels/" + base + ".rels"

		var rels xmlRelationships
		found, err := a.XML(relsPart, &rels)
		if !found || err != nil {
			continue
		}

		for _, rel := range rels.Relationships {
			if !strings.Contains(rel.Type, "threadedComment") &&
				!strings.Contains(rel.Target, "threadedComment") {
				continue
			}
			commentPart := resolveTarget("xl/worksheets", rel.Target)
			if name, ok := r.sheetNameByRelID[r.relIDBySheetPath[sheetPart]]; ok {
				r.sheetByPart[commentPart] = name
			}
		}
	}
}

// SheetForCommentPart resolves the worksheet a threaded-comment part belongs
// to. When the relationship chain is broken it falls back to the part's
// numeric suffix: first matched against the rId<N> convention, then used to
// synthesize a placeholder name. It never fails.
func (r *Resolver) SheetForCommentPart(part string) string {
	if name, ok := r.sheetByPart[part]; ok {
		return name
	}

	if m := numericSuffixPattern.FindStringSubmatch(path.Base(part)); m != nil {
		n, _ := strconv.Atoi(m[1])
		if name, ok := r.sheetNameByRelID[fmt.Sprintf("rId%d", n)]; ok {
			return name
		}
		return fmt.Sprintf("Sheet%d", n)
	}

	return "Sheet?"
}

// PersonName returns the display name for a person ID, or ok=false when the
// ID is not in the persons table.
func (r *Resolver) PersonName(id string) (string, bool) {
	p, ok := r.persons[id]
	if !ok {
		return "", false
	}
	return p.DisplayName, true
}

// Sheets returns the worksheets declared in the manifest, in manifest order.
func (r *Resolver) Sheets() []Sheet {
	return r.sheets
}

// resolveTarget turns a relationship target into a container part path.
// Targets may be absolute ("/xl/...") or relative to the part that declares
// them ("../threadedComments/threadedComment1.xml").
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(baseDir, target))
}
