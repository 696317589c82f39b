// Package styles holds the number-format metadata parsed from
// xl/styles.xml.  It is a small, import-cycle-free package so that both
// workbook/ and worksheet/ can depend on it.
package styles

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/internal/dateformat"
)

// NumFmt is one custom number format from <numFmts>.
type NumFmt struct {
	// ID is the numFmtId.  Custom formats normally use ids ≥ 164 but a
	// workbook may also redefine a built-in id.
	ID   int
	Code string
}

// XF is one cell format from <cellXfs>.  The s attribute of a cell is an
// index into that list.
type XF struct {
	NumFmtID int
	// ApplyNumberFormat mirrors the applyNumberFormat attribute.  A date
	// number format only turns serials into dates when it is set.
	ApplyNumberFormat bool
}

// StyleTable is the loaded styles part.  It is read-only after New.
type StyleTable struct {
	NumFmts []NumFmt
	CellXfs []XF

	dateIDs map[int]bool
}

// New streams a styles document.  Only <numFmts> and the <xf> entries of
// <cellXfs> are read; fonts, fills, borders and cellStyleXfs are skipped.
func New(r io.Reader) (*StyleTable, error) {
	var (
		fmts  []NumFmt
		xfs   []XF
		inXfs bool
		dec   = xml.NewDecoder(r)
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("styles: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "numFmt":
				id, err := intAttr(tok, "numFmtId")
				if err != nil {
					return nil, fmt.Errorf("styles: numFmt: %w", err)
				}
				fmts = append(fmts, NumFmt{ID: id, Code: attr(tok, "formatCode")})
			case "cellXfs":
				inXfs = true
			case "xf":
				if !inXfs {
					continue
				}
				id, err := intAttr(tok, "numFmtId")
				if err != nil {
					// an xf without numFmtId uses General
					id = 0
				}
				xfs = append(xfs, XF{NumFmtID: id, ApplyNumberFormat: boolAttr(tok, "applyNumberFormat")})
			}
		case xml.EndElement:
			if tok.Name.Local == "cellXfs" {
				inXfs = false
			}
		}
	}
	return Build(fmts, xfs), nil
}

// Build assembles a StyleTable and classifies its formats.  The date-id set
// is the built-in date ids plus every custom id whose code reads as a date.
// Custom codes only add to the set: a built-in date id stays a date even
// when the workbook redefines it.
func Build(numFmts []NumFmt, cellXfs []XF) *StyleTable {
	st := &StyleTable{
		NumFmts: numFmts,
		CellXfs: cellXfs,
		dateIDs: make(map[int]bool),
	}
	for id := 0; id < 164; id++ {
		if dateformat.IsBuiltInDateID(id) {
			st.dateIDs[id] = true
		}
	}
	for _, f := range numFmts {
		if dateformat.IsDateCode(f.Code) {
			st.dateIDs[f.ID] = true
		}
	}
	return st
}

// Len returns the number of cell formats.
func (st *StyleTable) Len() int {
	if st == nil {
		return 0
	}
	return len(st.CellXfs)
}

// Get returns the cell format at idx.  An index outside <cellXfs> yields an
// error matching errs.ErrOutOfRangeIndex.
func (st *StyleTable) Get(idx int) (XF, error) {
	if idx < 0 || idx >= st.Len() {
		return XF{}, errs.OutOfRange("style", idx, st.Len())
	}
	return st.CellXfs[idx], nil
}

// IsDateID reports whether number format id displays a date or time.
func (st *StyleTable) IsDateID(id int) bool {
	if st == nil {
		return dateformat.IsBuiltInDateID(id)
	}
	return st.dateIDs[id]
}

// IsDate reports whether xf turns numeric serials into dates: it must
// apply its number format and that format must be a date format.
func (st *StyleTable) IsDate(xf XF) bool {
	return xf.ApplyNumberFormat && st.IsDateID(xf.NumFmtID)
}

// IsText reports whether xf uses the built-in text format "@".
func (st *StyleTable) IsText(xf XF) bool {
	return xf.NumFmtID == dateformat.TextFormatID
}

func attr(tok xml.StartElement, name string) string {
	for _, a := range tok.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func intAttr(tok xml.StartElement, name string) (int, error) {
	v := attr(tok, name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s=%q: %w", name, v, err)
	}
	return n, nil
}

func boolAttr(tok xml.StartElement, name string) bool {
	switch attr(tok, name) {
	case "1", "true":
		return true
	}
	return false
}
