package worksheet

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TsubasaBE/go-xlsxtable/cellref"
	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/stringtable"
)

// RowState is the cursor of a row read.  It is owned by the caller and
// passed to every ReadRow call, so the reader's transitions can be driven
// and inspected directly.
type RowState struct {
	// Depth is the number of rows emitted so far; the next row emitted is
	// row Depth+1.
	Depth int
	// PendingEmpty is the number of synthetic empty rows still owed before
	// Lookahead.
	PendingEmpty int
	// Lookahead is a stored row already read from the stream and waiting
	// behind the synthetic rows that fill the gap before it.
	Lookahead dataset.Row
}

// RowReader streams the <sheetData> rows of one worksheet part.
type RowReader struct {
	ws    *Worksheet
	rc    io.ReadCloser
	dec   *xml.Decoder
	width int

	inSheetData bool
	done        bool
}

// Rows opens a row stream whose rows are width columns wide.  Cells beyond
// width are dropped.  The caller must Close the reader.
func (ws *Worksheet) Rows(width int) (*RowReader, error) {
	rc, dec, err := ws.open()
	if err != nil {
		return nil, err
	}
	return &RowReader{ws: ws, rc: rc, dec: dec, width: width}, nil
}

// Close releases the underlying stream.
func (rr *RowReader) Close() error {
	return rr.rc.Close()
}

// ReadRow returns the next dense row.  ok is false once the sheet has no
// more rows; a sheet without <sheetData> simply has none.
//
// Rows omitted from storage are reproduced as all-empty rows: when the
// stored row index jumps past Depth+1, the stored row is parked in
// st.Lookahead, the first empty row is returned at once and the remaining
// ones are drained from st.PendingEmpty on later calls before the parked row
// is handed back.  The row count therefore always equals the index of the
// last stored row.
func (rr *RowReader) ReadRow(st *RowState) (row dataset.Row, ok bool, err error) {
	switch {
	case st.PendingEmpty > 0:
		st.PendingEmpty--
		st.Depth++
		return dataset.NewRow(rr.width), true, nil
	case st.Lookahead != nil:
		row, st.Lookahead = st.Lookahead, nil
		st.Depth++
		return row, true, nil
	case rr.done:
		return nil, false, nil
	}

	start, err := rr.nextRow()
	if err != nil {
		return nil, false, err
	}
	if start == nil {
		rr.done = true
		return nil, false, nil
	}

	idx, err := rowIndex(*start, st.Depth)
	if err != nil {
		return nil, false, err
	}
	gap := idx - st.Depth - 1
	if limit := rr.ws.cfg.MaxRowGap; limit > 0 && gap > limit {
		return nil, false, fmt.Errorf("%w: %d missing rows before row %d, limit %d", errs.ErrRowGapExceeded, gap, idx, limit)
	}

	row, err = rr.readCells(idx)
	if err != nil {
		return nil, false, err
	}
	st.Depth++
	if gap > 0 {
		st.Lookahead = row
		st.PendingEmpty = gap - 1
		return dataset.NewRow(rr.width), true, nil
	}
	return row, true, nil
}

func rowIndex(se xml.StartElement, depth int) (int, error) {
	v, ok := attr(se, "r")
	if !ok {
		return 0, errs.Malformed("row %d has no r attribute", depth+1)
	}
	idx, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.Malformed("row index %q is not a number", v)
	}
	switch {
	case idx < 1 || idx > cellref.MaxRows:
		return 0, errs.Malformed("row index %d outside 1..%d", idx, cellref.MaxRows)
	case idx <= depth:
		return 0, errs.Malformed("row index %d does not follow row %d", idx, depth)
	}
	return idx, nil
}

// nextRow advances to the next <row> inside <sheetData>.  It returns nil
// at </sheetData> or end of document.
func (rr *RowReader) nextRow() (*xml.StartElement, error) {
	for {
		tok, err := rr.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("worksheet: read rows: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			switch {
			case tok.Name.Local == "sheetData":
				rr.inSheetData = true
			case rr.inSheetData && tok.Name.Local == "row":
				se := tok.Copy()
				return &se, nil
			case rr.inSheetData:
				if err := rr.dec.Skip(); err != nil {
					return nil, fmt.Errorf("worksheet: read rows: %w", err)
				}
			}
		case xml.EndElement:
			if tok.Name.Local == "sheetData" {
				return nil, nil
			}
		}
	}
}

// readCells consumes the children of the current <row> up to </row>.
func (rr *RowReader) readCells(rowIdx int) (dataset.Row, error) {
	row := dataset.NewRow(rr.width)
	for {
		tok, err := rr.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("worksheet: row %d: %w", rowIdx, err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if tok.Name.Local != "c" {
				if err := rr.dec.Skip(); err != nil {
					return nil, fmt.Errorf("worksheet: row %d: %w", rowIdx, err)
				}
				continue
			}
			col, v, err := rr.readCell(tok, rowIdx)
			if err != nil {
				return nil, err
			}
			if col <= len(row) {
				row[col-1] = v
			}
		case xml.EndElement:
			if tok.Name.Local == "row" {
				return row, nil
			}
		}
	}
}

// rawCell is what one <c> element carries before type resolution.
type rawCell struct {
	ref      string
	style    string
	typ      string
	value    string
	hasValue bool
	formula  string
}

// readCell consumes one <c> element and resolves its value.
func (rr *RowReader) readCell(se xml.StartElement, rowIdx int) (int, dataset.Value, error) {
	var rc rawCell
	var ok bool
	if rc.ref, ok = attr(se, "r"); !ok {
		return 0, dataset.Value{}, errs.Malformed("cell in row %d has no r attribute", rowIdx)
	}
	col, _, err := cellref.Decode(rc.ref)
	if err != nil {
		return 0, dataset.Value{}, fmt.Errorf("worksheet: row %d: %w", rowIdx, err)
	}
	rc.style, _ = attr(se, "s")
	rc.typ, _ = attr(se, "t")

	if err := rr.readCellChildren(&rc); err != nil {
		return 0, dataset.Value{}, fmt.Errorf("worksheet: cell %s: %w", rc.ref, err)
	}
	if !rc.hasValue {
		return col, dataset.Value{}, nil
	}

	v, err := rr.ws.resolveValue(rc)
	if err != nil {
		return 0, dataset.Value{}, fmt.Errorf("worksheet: cell %s: %w", rc.ref, err)
	}
	if isHyperlinkFormula(rc.formula) {
		idx, err := ParseHyperlinkFormula(rr.ws.Name, rc.formula)
		switch {
		case err != nil:
			rr.ws.log.Debug("ignoring hyperlink formula", "cell", rc.ref, "err", err)
		case idx != nil:
			v.Index = idx
		}
	}
	return col, v, nil
}

func (rr *RowReader) readCellChildren(rc *rawCell) error {
	for {
		tok, err := rr.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "v":
				if err := rr.dec.DecodeElement(&rc.value, &tok); err != nil {
					return err
				}
				// <v/> is what a formula returning "" leaves behind
				rc.hasValue = rc.value != ""
			case "f":
				if err := rr.dec.DecodeElement(&rc.formula, &tok); err != nil {
					return err
				}
			case "is":
				s, err := readInline(rr.dec)
				if err != nil {
					return err
				}
				rc.value, rc.hasValue = s, s != ""
			default:
				if err := rr.dec.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if tok.Name.Local == "c" {
				return nil
			}
		}
	}
}

// readInline collects the text of an <is> element: a plain <t> or the
// runs of rich text, without phonetic hints.
func readInline(dec *xml.Decoder) (string, error) {
	var (
		sb     strings.Builder
		inText bool
		depth  = 1
	)
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if tok.Name.Local == "rPh" {
				if err := dec.Skip(); err != nil {
					return "", err
				}
				continue
			}
			depth++
			inText = tok.Name.Local == "t"
		case xml.EndElement:
			depth--
			inText = false
		case xml.CharData:
			if inText {
				sb.Write(tok)
			}
		}
	}
	return stringtable.Unescape(sb.String()), nil
}
