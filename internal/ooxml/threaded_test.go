package ooxml

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/klytics/xlnotes/internal/container"
)

const testWorkbookXML = `<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
          xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Budget" sheetId="1" r:id="rId1"/>
    <sheet name="Forecast" sheetId="2" r:id="rId2"/>
  </sheets>
</workbook>`

const testWorkbookRels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const testSheet1Rels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.microsoft.com/office/2017/10/relationships/threadedComment" Target="../threadedComments/threadedComment1.xml"/>
</Relationships>`

const testPersonsXML = `<?xml version="1.0"?>
<personList xmlns="http://schemas.microsoft.com/office/spreadsheetml/2018/threadedcomments">
  <person displayName="Alice" id="p1" userId="alice@example.com"/>
  <person id="p2"/>
</personList>`

const testThreadedXML = `<?xml version="1.0"?>
<ThreadedComments xmlns="http://schemas.microsoft.com/office/spreadsheetml/2018/threadedcomments">
  <threadedComment ref="D16" dT="2024-03-01T10:15:00.00" personId="p1" id="{1}">
    <text>Hello</text>
  </threadedComment>
  <threadedComment ref="A2" dT="2024-03-02T08:00:00.00" personId="p9" id="{2}">
    <text>Orphan author</text>
  </threadedComment>
  <threadedComment ref="B3" dT="2024-03-03T08:00:00.00" personId="p1" id="{3}">
    <text>   </text>
  </threadedComment>
</ThreadedComments>`

func buildArchive(t *testing.T, entries map[string]string) *container.Archive {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		w.Write([]byte(content))
	}
	zw.Close()

	a, err := container.Open(buf.Bytes())
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	return a
}

func fullTestArchive(t *testing.T) *container.Archive {
	return buildArchive(t, map[string]string{
		"xl/workbook.xml":                          testWorkbookXML,
		"xl/_rels/workbook.xml.rels":               testWorkbookRels,
		"xl/worksheets/sheet1.xml":                 "<worksheet/>",
		"xl/worksheets/sheet2.xml":                 "<worksheet/>",
		"xl/worksheets/_rels/sheet1.xml.rels":      testSheet1Rels,
		"xl/persons/person.xml":                    testPersonsXML,
		"xl/threadedComments/threadedComment1.xml": testThreadedXML,
	})
}

func TestResolverComposesRelationshipChain(t *testing.T) {
	r, err := NewResolver(fullTestArchive(t))
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	got := r.SheetForCommentPart("xl/threadedComments/threadedComment1.xml")
	if got != "Budget" {
		t.Errorf("sheet = %q, want Budget", got)
	}
}

func TestResolverFallbackToRelIDConvention(t *testing.T) {
	// No per-sheet rels file: composition fails, numeric suffix maps
	// threadedComment2 -> rId2 -> Forecast.
	a := buildArchive(t, map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testWorkbookRels,
		"xl/worksheets/sheet1.xml":   "<worksheet/>",
		"xl/worksheets/sheet2.xml":   "<worksheet/>",
	})
	r, err := NewResolver(a)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	if got := r.SheetForCommentPart("xl/threadedComments/threadedComment2.xml"); got != "Forecast" {
		t.Errorf("sheet = %q, want Forecast", got)
	}
}

func TestResolverSynthesizesPlaceholderName(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"xl/threadedComments/threadedComment7.xml": testThreadedXML,
	})
	r, err := NewResolver(a)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	if got := r.SheetForCommentPart("xl/threadedComments/threadedComment7.xml"); got != "Sheet7" {
		t.Errorf("sheet = %q, want synthesized Sheet7", got)
	}
}

func TestResolverMalformedWorkbookIsFatal(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"xl/workbook.xml": "<workbook><sheets><unclosed",
	})
	if _, err := NewResolver(a); err == nil {
		t.Fatal("expected error for malformed workbook manifest")
	}
}

func TestResolverMissingPersonsPart(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"xl/workbook.xml": testWorkbookXML,
	})
	r, err := NewResolver(a)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	if _, ok := r.PersonName("p1"); ok {
		t.Error("expected no person entries without a persons part")
	}
}

func TestPersonWithoutDisplayName(t *testing.T) {
	r, err := NewResolver(fullTestArchive(t))
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	name, ok := r.PersonName("p2")
	if !ok {
		t.Fatal("p2 should exist")
	}
	if name != UnknownDisplayName {
		t.Errorf("name = %q, want %q", name, UnknownDisplayName)
	}
}

func TestExtractThreadedRoundTrip(t *testing.T) {
	a := fullTestArchive(t)
	r, err := NewResolver(a)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	records, found := ExtractThreaded(a, r)
	if !found {
		t.Fatal("expected threaded-comment parts to be detected")
	}
	// Blank-text comment must be skipped.
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Sheet != "Budget" || first.Cell != "D16" || first.Author != "Alice" || first.Text != "Hello" {
		t.Errorf("unexpected record: %+v", first)
	}
	if first.Created != "2024-03-01T10:15:00.00" {
		t.Errorf("Created = %q", first.Created)
	}

	// Unresolvable person ID keeps the comment with the sentinel author.
	second := records[1]
	if second.Author != UnknownAuthor {
		t.Errorf("author = %q, want %q", second.Author, UnknownAuthor)
	}
	if second.Text != "Orphan author" {
		t.Errorf("text = %q", second.Text)
	}
}

func TestExtractThreadedNoParts(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"xl/workbook.xml": testWorkbookXML,
	})
	r, err := NewResolver(a)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	records, found := ExtractThreaded(a, r)
	if found {
		t.Error("found should be false with no threaded-comment parts")
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestExtractThreadedSkipsMalformedPart(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"xl/workbook.xml":                          testWorkbookXML,
		"xl/threadedComments/threadedComment1.xml": "<ThreadedComments><broken",
		"xl/threadedComments/threadedComment2.xml": testThreadedXML,
	})
	r, err := NewResolver(a)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	records, found := ExtractThreaded(a, r)
	if !found {
		t.Fatal("parts existed, found should be true")
	}
	if len(records) != 2 {
		t.Errorf("expected records from the intact part only, got %d", len(records))
	}
}

func TestResolveTarget(t *testing.T) {
	cases := []struct {
		base, target, want string
	}{
		{"xl/worksheets", "../threadedComments/threadedComment1.xml", "xl/threadedComments/threadedComment1.xml"},
		{"xl", "worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets", "/xl/threadedComments/threadedComment1.xml", "xl/threadedComments/threadedComment1.xml"},
	}
	for _, c := range cases {
		if got := resolveTarget(c.base, c.target); got != c.want {
			t.Errorf("resolveTarget(%q, %q) = %q, want %q", c.base, c.target, got, c.want)
		}
	}
}
