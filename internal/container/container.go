// Package container provides read access to the ZIP part container of an
// OOXML spreadsheet and rejects unsupported workbook formats up front.
package container

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel errors for the failure classes callers are expected to branch on.
var (
	// ErrBadContainer means the input bytes are not a readable ZIP archive.
	ErrBadContainer = errors.New("not a valid ZIP container")
	// ErrUnsupportedFormat means the input is a spreadsheet format this tool
	// does not read (.xls, .xlsb).
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	// ErrMalformedXML means a part existed but its XML could not be parsed.
	ErrMalformedXML = errors.New("malformed XML part")
)

// oleSignature is the magic number of OLE compound files (.xls, .doc, ...).
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Archive is an immutable in-memory view of one workbook's ZIP parts.
// It is built once per extraction run and never shared between runs.
type Archive struct {
	entries map[string][]byte
	names   []string
}

// Open reads a ZIP archive from memory. The returned Archive holds a copy of
// every entry's bytes up front for random access by part name.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadContainer, err)
	}

	a := &Archive{entries: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: could not open entry %s: %v", ErrBadContainer, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: could not read entry %s: %v", ErrBadContainer, f.Name, err)
		}
		a.entries[f.Name] = content
		a.names = append(a.names, f.Name)
	}

	return a, nil
}

// Entry returns the raw bytes of a named part. A missing part is reported via
// the second return value, not an error.
func (a *Archive) Entry(path string) ([]byte, bool) {
	data, ok := a.entries[path]
	return data, ok
}

// Match returns the names of all parts satisfying the predicate, in archive
// order. Archive order is not meaningful but is stable for a given file.
func (a *Archive) Match(pred func(name string) bool) []string {
	var out []string
	for _, name := range a.names {
		if pred(name) {
			out = append(out, name)
		}
	}
	return out
}

// XML parses a named part into v. A missing part returns (false, nil) so
// optional parts read as "no data". Unparsable bytes return an error wrapping
// ErrMalformedXML; the caller decides whether that part was optional.
func (a *Archive) XML(path string, v any) (bool, error) {
	data, ok := a.entries[path]
	if !ok {
		return false, nil
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrMalformedXML, path, err)
	}
	return true, nil
}

// Sniff rejects input that is recognizably not a ZIP-packaged .xlsx workbook.
// It runs before any parsing so the user gets a message naming the actual
// format instead of a generic ZIP error.
func Sniff(filename string, data []byte) error {
	lower := strings.ToLower(filename)

	if strings.HasSuffix(lower, ".xls") || bytes.HasPrefix(data, oleSignature) {
		return fmt.Errorf("%w: %s is a legacy binary .xls workbook — open it in Excel and save as .xlsx first", ErrUnsupportedFormat, filename)
	}
	if strings.HasSuffix(lower, ".xlsb") {
		return fmt.Errorf("%w: %s is a binary .xlsb workbook — open it in Excel and save as .xlsx first", ErrUnsupportedFormat, filename)
	}

	// An .xlsb renamed to .xlsx is still a ZIP, but carries a binary workbook
	// part instead of workbook.xml.
	if zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		for _, f := range zr.File {
			if f.Name == "xl/workbook.bin" {
				return fmt.Errorf("%w: %s contains a binary .xlsb workbook — open it in Excel and save as .xlsx first", ErrUnsupportedFormat, filename)
			}
		}
	}

	return nil
}
