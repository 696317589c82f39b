// Package workbook opens an OpenXML workbook package and loads the metadata
// every sheet read needs: the sheet list, shared strings, styles and the
// date system.
package workbook

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/TsubasaBE/go-xlsxtable/archive"
	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/internal/rels"
	"github.com/TsubasaBE/go-xlsxtable/stringtable"
	"github.com/TsubasaBE/go-xlsxtable/styles"
	"github.com/TsubasaBE/go-xlsxtable/worksheet"
)

// Default part names, used when the package relationships do not say
// otherwise.
const (
	DefaultWorkbookPart      = "xl/workbook.xml"
	DefaultSharedStringsPart = "xl/sharedStrings.xml"
	DefaultStylesPart        = "xl/styles.xml"

	packageRelsPart = "_rels/.rels"
)

// Relationship type suffixes.  Strict and transitional packages use
// different namespace prefixes, so only the last path segment is compared.
const (
	relOfficeDocument = "officeDocument"
	relSharedStrings  = "sharedStrings"
	relStyles         = "styles"
)

// Workbook is an open workbook package.
type Workbook struct {
	src    archive.Provider
	sheets []worksheet.Descriptor

	// SST is the shared-string table; empty when the package has none.
	SST *stringtable.StringTable
	// Styles is the style table; nil when the package has no styles part.
	Styles *styles.StyleTable
	// Date1904 is true when serials count from 1904-01-01.
	Date1904 bool
}

// Open opens the named file and loads its metadata.  The caller must Close
// the returned Workbook.
func Open(name string) (*Workbook, error) {
	z, err := archive.OpenZip(name)
	if err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}
	wb, err := New(z)
	if err != nil {
		_ = z.Close()
		return nil, err
	}
	return wb, nil
}

// OpenReader loads a workbook from an in-memory package of the given size.
func OpenReader(r io.ReaderAt, size int64) (*Workbook, error) {
	z, err := archive.NewZip(r, size)
	if err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}
	return New(z)
}

// New loads the workbook metadata from src.  The workbook part and its
// relationship part are required; shared strings and styles are optional.
// On success the Workbook owns src and closes it in Close.
func New(src archive.Provider) (*Workbook, error) {
	wb := &Workbook{src: src}
	wbPart := wb.workbookPart()
	wbRels, err := wb.readRels(rels.PathFor(wbPart))
	if err != nil {
		return nil, err
	}
	if err := wb.parseWorkbook(wbPart, wbRels); err != nil {
		return nil, err
	}

	baseDir := path.Dir(wbPart)
	sstPart := partByType(wbRels, baseDir, relSharedStrings, DefaultSharedStringsPart)
	if err := wb.parseSharedStrings(sstPart); err != nil {
		return nil, err
	}
	stylesPart := partByType(wbRels, baseDir, relStyles, DefaultStylesPart)
	if err := wb.parseStyles(stylesPart); err != nil {
		return nil, err
	}
	return wb, nil
}

// Sheets returns the sheet descriptors in workbook order.
func (wb *Workbook) Sheets() []worksheet.Descriptor {
	return append([]worksheet.Descriptor(nil), wb.sheets...)
}

// SheetNames returns the sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns a reader for the sheet at the given 1-based index.  The
// workbook's tables are filled into cfg.
func (wb *Workbook) Sheet(idx int, cfg worksheet.Config) (*worksheet.Worksheet, error) {
	if idx < 1 || idx > len(wb.sheets) {
		return nil, fmt.Errorf("workbook: sheet index %d out of range [1, %d]", idx, len(wb.sheets))
	}
	return wb.Worksheet(wb.sheets[idx-1], cfg), nil
}

// SheetByName returns a reader for the named sheet (case-insensitive).
func (wb *Workbook) SheetByName(name string, cfg worksheet.Config) (*worksheet.Worksheet, error) {
	d, ok := wb.lookup(name)
	if !ok {
		return nil, fmt.Errorf("workbook: sheet %q not found", name)
	}
	return wb.Worksheet(d, cfg), nil
}

// Worksheet returns a reader for d using the workbook's tables.
func (wb *Workbook) Worksheet(d worksheet.Descriptor, cfg worksheet.Config) *worksheet.Worksheet {
	cfg.SST = wb.SST
	cfg.Styles = wb.Styles
	cfg.Date1904 = wb.Date1904
	return worksheet.New(wb.src, d, cfg)
}

// SheetVisibility returns the visibility of the named sheet
// (case-insensitive); ok is false when no such sheet exists.
func (wb *Workbook) SheetVisibility(name string) (v worksheet.Visibility, ok bool) {
	d, ok := wb.lookup(name)
	return d.Visibility, ok
}

// Close releases the underlying package.
func (wb *Workbook) Close() error {
	return wb.src.Close()
}

func (wb *Workbook) lookup(name string) (worksheet.Descriptor, bool) {
	for _, s := range wb.sheets {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return worksheet.Descriptor{}, false
}

// ── internal ─────────────────────────────────────────────────────────────────

// workbookPart finds the main workbook part through the package
// relationships, falling back to xl/workbook.xml.
func (wb *Workbook) workbookPart() string {
	if !wb.src.Has(packageRelsPart) {
		return DefaultWorkbookPart
	}
	m, err := wb.readRels(packageRelsPart)
	if err != nil {
		return DefaultWorkbookPart
	}
	return partByType(m, "", relOfficeDocument, DefaultWorkbookPart)
}

func (wb *Workbook) readRels(name string) (rels.Map, error) {
	data, err := archive.ReadAll(wb.src, name)
	if err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}
	m, err := rels.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("workbook: %s: %w", name, err)
	}
	return m, nil
}

func partByType(m rels.Map, baseDir, relType, fallback string) string {
	for _, r := range m {
		if path.Base(r.Type) == relType && !r.External() {
			return rels.ResolvePath(baseDir, r.Target)
		}
	}
	return fallback
}

// parseWorkbook streams the workbook part for <workbookPr> and the
// <sheet> list, joining each sheet's r:id against the relationships.
func (wb *Workbook) parseWorkbook(part string, wbRels rels.Map) error {
	rc, err := wb.src.Open(part)
	if err != nil {
		return fmt.Errorf("workbook: %w", err)
	}
	defer rc.Close()

	baseDir := path.Dir(part)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("workbook: %s: %w", part, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "workbookPr":
			switch attr(se, "date1904") {
			case "1", "true":
				wb.Date1904 = true
			}
		case "sheet":
			d, err := sheetDescriptor(se, wbRels, baseDir)
			if err != nil {
				return err
			}
			wb.sheets = append(wb.sheets, d)
		}
	}
}

func sheetDescriptor(se xml.StartElement, wbRels rels.Map, baseDir string) (worksheet.Descriptor, error) {
	name := attr(se, "name")
	id := attr(se, "id")
	rel, ok := wbRels[id]
	if !ok || rel.Target == "" {
		return worksheet.Descriptor{}, fmt.Errorf("workbook: sheet %q: relationship %q: %w", name, id, errs.ErrMissingPart)
	}
	p := rels.ResolvePath(baseDir, rel.Target)
	return worksheet.Descriptor{
		Name:       name,
		Path:       p,
		RelsPath:   rels.PathFor(p),
		Visibility: worksheet.ParseVisibility(attr(se, "state")),
	}, nil
}

func (wb *Workbook) parseSharedStrings(part string) error {
	if !wb.src.Has(part) {
		wb.SST = stringtable.FromStrings()
		return nil
	}
	rc, err := wb.src.Open(part)
	if err != nil {
		return fmt.Errorf("workbook: %w", err)
	}
	defer rc.Close()
	st, err := stringtable.New(rc)
	if err != nil {
		return fmt.Errorf("workbook: shared strings: %w", err)
	}
	wb.SST = st
	return nil
}

func (wb *Workbook) parseStyles(part string) error {
	if !wb.src.Has(part) {
		return nil
	}
	rc, err := wb.src.Open(part)
	if err != nil {
		return fmt.Errorf("workbook: %w", err)
	}
	defer rc.Close()
	st, err := styles.New(rc)
	if err != nil {
		return fmt.Errorf("workbook: styles: %w", err)
	}
	wb.Styles = st
	return nil
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
