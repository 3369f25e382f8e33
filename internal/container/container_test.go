package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("this is not a zip file"))
	if err == nil {
		t.Fatal("expected error for non-zip input")
	}
	if !errors.Is(err, ErrBadContainer) {
		t.Errorf("expected ErrBadContainer, got %v", err)
	}
}

func TestEntryLookup(t *testing.T) {
	data := buildZip(t, map[string]string{
		"xl/workbook.xml": "<workbook/>",
		"xl/styles.xml":   "<styleSheet/>",
	})

	a, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	content, ok := a.Entry("xl/workbook.xml")
	if !ok {
		t.Fatal("expected xl/workbook.xml to exist")
	}
	if string(content) != "<workbook/>" {
		t.Errorf("unexpected content %q", content)
	}

	if _, ok := a.Entry("xl/missing.xml"); ok {
		t.Error("expected missing entry to report absent")
	}
}

func TestMatchReturnsArchiveOrder(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{
		"xl/threadedComments/threadedComment2.xml",
		"xl/workbook.xml",
		"xl/threadedComments/threadedComment1.xml",
	} {
		w, _ := zw.Create(name)
		w.Write([]byte("<x/>"))
	}
	zw.Close()

	a, err := Open(buf.Bytes())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got := a.Match(func(name string) bool {
		return strings.Contains(name, "threadedComment")
	})
	want := []string{
		"xl/threadedComments/threadedComment2.xml",
		"xl/threadedComments/threadedComment1.xml",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestXMLMissingPartIsNotAnError(t *testing.T) {
	a, err := Open(buildZip(t, map[string]string{"xl/workbook.xml": "<workbook/>"}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var v struct{}
	found, err := a.XML("xl/persons/person.xml", &v)
	if err != nil {
		t.Errorf("missing part should not error, got %v", err)
	}
	if found {
		t.Error("missing part should report not found")
	}
}

func TestXMLMalformedPart(t *testing.T) {
	a, err := Open(buildZip(t, map[string]string{"xl/workbook.xml": "<workbook><unclosed"}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var v struct{}
	found, err := a.XML("xl/workbook.xml", &v)
	if !found {
		t.Error("part exists, should report found")
	}
	if !errors.Is(err, ErrMalformedXML) {
		t.Errorf("expected ErrMalformedXML, got %v", err)
	}
}

func TestSniffRejectsXlsByExtension(t *testing.T) {
	err := Sniff("report.xls", []byte("whatever"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), ".xls") {
		t.Errorf("message should name the format: %v", err)
	}
}

func TestSniffRejectsOleSignature(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, []byte("rest")...)
	err := Sniff("mystery.xlsx", data)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for OLE signature, got %v", err)
	}
}

func TestSniffRejectsXlsbBeforeParsing(t *testing.T) {
	err := Sniff("report.xlsb", nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), ".xlsb") {
		t.Errorf("message should name the format: %v", err)
	}
}

func TestSniffRejectsDisguisedXlsb(t *testing.T) {
	data := buildZip(t, map[string]string{"xl/workbook.bin": "binary"})
	err := Sniff("renamed.xlsx", data)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for xl/workbook.bin, got %v", err)
	}
}

func TestSniffAcceptsXlsx(t *testing.T) {
	data := buildZip(t, map[string]string{"xl/workbook.xml": "<workbook/>"})
	if err := Sniff("report.xlsx", data); err != nil {
		t.Errorf("expected nil for valid xlsx container, got %v", err)
	}
}
