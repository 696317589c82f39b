// Package xlsxtest builds small OpenXML packages in memory for tests.
//
// Fixtures are written as literal XML so that each test controls exactly
// which attributes are present; excelize-generated books are used where a
// test needs a real producer's output instead.
package xlsxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Part is one named entry of a package.
type Part struct {
	Name string
	Data string
}

// Zip assembles parts into a ZIP package, in order.
func Zip(t testing.TB, parts ...Part) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		zipAddFile(t, zw, p.Name, []byte(p.Data))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func zipAddFile(t testing.TB, zw *zip.Writer, name string, data []byte) {
	t.Helper()
	f, err := zw.Create(name)
	if err != nil {
		t.Fatalf("zip create %s: %v", name, err)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatalf("zip write %s: %v", name, err)
	}
}

// WriteFile stores data in a temporary file and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// Sheet describes one worksheet of a Book.
type Sheet struct {
	Name  string
	State string // "", "hidden" or "veryHidden"
	// XML is the complete worksheet document; see SheetXML.
	XML string
	// Rels is the worksheet's relationship part, if any.
	Rels string
}

// Book describes a workbook package.
type Book struct {
	Sheets        []Sheet
	SharedStrings []string
	// Styles is the complete styles part; empty omits it.
	Styles   string
	Date1904 bool
}

// Parts returns the package parts of b.
func (b Book) Parts() []Part {
	var wb, rels strings.Builder
	wb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	if b.Date1904 {
		wb.WriteString(`<workbookPr date1904="1"/>`)
	}
	wb.WriteString(`<sheets>`)
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)

	parts := []Part{{Name: "[Content_Types].xml", Data: contentTypes}}
	for i, s := range b.Sheets {
		n := i + 1
		state := ""
		if s.State != "" {
			state = fmt.Sprintf(` state="%s"`, s.State)
		}
		fmt.Fprintf(&wb, `<sheet name="%s" sheetId="%d"%s r:id="rId%d"/>`, html.EscapeString(s.Name), n, state, n)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, n, n)
		parts = append(parts, Part{Name: fmt.Sprintf("xl/worksheets/sheet%d.xml", n), Data: s.XML})
		if s.Rels != "" {
			parts = append(parts, Part{Name: fmt.Sprintf("xl/worksheets/_rels/sheet%d.xml.rels", n), Data: s.Rels})
		}
	}
	wb.WriteString(`</sheets></workbook>`)
	rels.WriteString(`</Relationships>`)
	parts = append(parts,
		Part{Name: "xl/workbook.xml", Data: wb.String()},
		Part{Name: "xl/_rels/workbook.xml.rels", Data: rels.String()},
	)
	if len(b.SharedStrings) > 0 {
		parts = append(parts, Part{Name: "xl/sharedStrings.xml", Data: SharedStringsXML(b.SharedStrings...)})
	}
	if b.Styles != "" {
		parts = append(parts, Part{Name: "xl/styles.xml", Data: b.Styles})
	}
	return parts
}

// Build assembles b into a ZIP package.
func (b Book) Build(t testing.TB) []byte {
	t.Helper()
	return Zip(t, b.Parts()...)
}

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`</Types>`

// SheetXML wraps sheetData rows (and optional trailing elements such as
// <hyperlinks>) in a worksheet document.  An empty dimension omits the
// <dimension> element.
func SheetXML(dimension, rows, trailing string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	if dimension != "" {
		fmt.Fprintf(&b, `<dimension ref="%s"/>`, dimension)
	}
	b.WriteString(`<sheetData>` + rows + `</sheetData>` + trailing + `</worksheet>`)
	return b.String()
}

// SharedStringsXML renders a shared-string table of plain items.
func SharedStringsXML(items ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`, len(items), len(items))
	for _, s := range items {
		fmt.Fprintf(&b, `<si><t xml:space="preserve">%s</t></si>`, html.EscapeString(s))
	}
	b.WriteString(`</sst>`)
	return b.String()
}

// StylesXML renders a styles part.  numFmts maps custom ids to codes;
// cellXfs lists the numFmtId of each cell format, with applyNumberFormat
// set on every entry whose id is non-zero.
func StylesXML(numFmts map[int]string, cellXfs ...int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	if len(numFmts) > 0 {
		fmt.Fprintf(&b, `<numFmts count="%d">`, len(numFmts))
		for id, code := range numFmts {
			fmt.Fprintf(&b, `<numFmt numFmtId="%d" formatCode="%s"/>`, id, html.EscapeString(code))
		}
		b.WriteString(`</numFmts>`)
	}
	b.WriteString(`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0"/></cellStyleXfs>`)
	fmt.Fprintf(&b, `<cellXfs count="%d">`, len(cellXfs))
	for _, id := range cellXfs {
		apply := ""
		if id != 0 {
			apply = ` applyNumberFormat="1"`
		}
		fmt.Fprintf(&b, `<xf numFmtId="%d" fontId="0" fillId="0" borderId="0" xfId="0"%s/>`, id, apply)
	}
	b.WriteString(`</cellXfs></styleSheet>`)
	return b.String()
}

// HyperlinkRels renders a worksheet relationship part with one external
// hyperlink per id→target pair.
func HyperlinkRels(targets map[string]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for id, target := range targets {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s" TargetMode="External"/>`,
			id, html.EscapeString(target))
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}
