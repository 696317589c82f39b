package worksheet

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/TsubasaBE/go-xlsxtable/cellref"
)

// DetectDimension establishes the sheet's bounds before the full read.
//
// An explicit <dimension ref> is used when present.  Otherwise the bounds
// are derived from the number of <row> elements and the widest cell
// reference; a sheet with no rows or no cells is empty and yields nil.
//
// A sampling pass then reads up to SampleRows rows and narrows the width to
// the last column that actually holds a value.  Declared dimensions are
// upper bounds only: sampling never widens them.  A sheet whose sampling
// pass reads no rows at all is empty as well.
func (ws *Worksheet) DetectDimension() (*Dimension, error) {
	dim, err := ws.scanDimension()
	if err != nil || dim == nil {
		return nil, err
	}
	measured, rows, err := ws.sampleWidth(dim)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		ws.log.Debug("sampling read no rows", "dimension", dim.String())
		return nil, nil
	}
	if measured < dim.LastCol {
		ws.log.Debug("narrowed dimension", "declared", dim.LastCol, "measured", measured)
		dim = &Dimension{FirstRow: 1, LastRow: dim.LastRow, FirstCol: 1, LastCol: measured}
	}
	return dim, nil
}

// scanDimension is the first half of DetectDimension: the declared or
// derived bounds, before sampling.
func (ws *Worksheet) scanDimension() (*Dimension, error) {
	rc, dec, err := ws.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rows, maxCol := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("worksheet: scan dimension: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "dimension":
			ref, _ := attr(se, "ref")
			r, err := cellref.DecodeRange(ref)
			if err != nil {
				return nil, fmt.Errorf("worksheet: dimension: %w", err)
			}
			ws.log.Debug("explicit dimension", "ref", ref)
			return &Dimension{FirstRow: r.FirstRow, LastRow: r.LastRow, FirstCol: r.FirstCol, LastCol: r.LastCol}, nil
		case "row":
			rows++
		case "c":
			ref, ok := attr(se, "r")
			if !ok {
				continue
			}
			col, _, err := cellref.Decode(ref)
			if err != nil {
				return nil, fmt.Errorf("worksheet: scan dimension: %w", err)
			}
			maxCol = max(maxCol, col)
		}
	}
	if rows == 0 || maxCol == 0 {
		ws.log.Debug("no dimension and no cells, sheet is empty")
		return nil, nil
	}
	ws.log.Debug("derived dimension", "rows", rows, "cols", maxCol)
	return &Dimension{FirstRow: 1, LastRow: rows, FirstCol: 1, LastCol: maxCol}, nil
}

// sampleWidth reads up to min(LastRow, SampleRows) rows and returns the
// widest populated width seen (at least 1) and the number of rows read.
func (ws *Worksheet) sampleWidth(dim *Dimension) (width, rows int, err error) {
	rr, err := ws.Rows(dim.Columns())
	if err != nil {
		return 0, 0, err
	}
	defer rr.Close()

	limit := min(dim.LastRow, ws.cfg.SampleRows)
	var st RowState
	width = 1
	for rows < limit {
		row, ok, err := rr.ReadRow(&st)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			break
		}
		rows++
		width = max(width, row.LastNonEmpty()+1)
	}
	return width, rows, nil
}
