package worksheet

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/TsubasaBE/go-xlsxtable/archive"
	"github.com/TsubasaBE/go-xlsxtable/cellref"
	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/internal/rels"
)

// ResolveHyperlinks decorates the cells of tbl named by the sheet's
// <hyperlinks> section and returns how many cells it decorated.
//
// A link's target comes from the sheet relationship part when the entry
// carries an r:id known there; otherwise the display text stands in.  The
// location attribute becomes the fragment.  A ref may be a range, in which
// case every cell of the range inside the table is decorated.  Entries with
// an unreadable ref or one outside the table are skipped: hyperlinks are
// decoration and never fail a read.
func (ws *Worksheet) ResolveHyperlinks(tbl *dataset.Table) (int, error) {
	targets := ws.loadRels()

	rc, dec, err := ws.open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	decorated := 0
	inLinks := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return decorated, nil
		}
		if err != nil {
			return decorated, fmt.Errorf("worksheet: read hyperlinks: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			switch {
			case tok.Name.Local == "sheetData":
				// rows are already in tbl
				if err := dec.Skip(); err != nil {
					return decorated, fmt.Errorf("worksheet: read hyperlinks: %w", err)
				}
			case tok.Name.Local == "hyperlinks":
				inLinks = true
			case inLinks && tok.Name.Local == "hyperlink":
				decorated += ws.applyHyperlink(tbl, tok, targets)
			}
		case xml.EndElement:
			if tok.Name.Local == "hyperlinks" {
				return decorated, nil
			}
		}
	}
}

func (ws *Worksheet) applyHyperlink(tbl *dataset.Table, se xml.StartElement, targets rels.Map) int {
	ref, _ := attr(se, "ref")
	id, _ := attr(se, "id")
	display, _ := attr(se, "display")
	location, _ := attr(se, "location")

	target := display
	if t := targets.Target(id); id != "" && t != "" {
		target = t
	}

	r, err := cellref.DecodeRange(ref)
	if err != nil {
		ws.log.Debug("skipping hyperlink", "ref", ref, "err", err)
		return 0
	}
	bounds := cellref.Range{FirstCol: 1, FirstRow: 1, LastCol: tbl.Columns, LastRow: len(tbl.Rows)}
	if !bounds.Contains(r.FirstCol, r.FirstRow) {
		ws.log.Debug("skipping hyperlink outside table", "ref", ref)
		return 0
	}
	n := 0
	for row := r.FirstRow; row <= min(r.LastRow, len(tbl.Rows)); row++ {
		for col := r.FirstCol; col <= min(r.LastCol, tbl.Columns); col++ {
			if c := tbl.Cell(col, row); c != nil {
				c.Link = &dataset.Hyperlink{Target: target, Fragment: location}
				n++
			}
		}
	}
	return n
}

// loadRels reads the sheet relationship part.  A missing or unreadable
// part leaves every link on its display text.
func (ws *Worksheet) loadRels() rels.Map {
	if ws.RelsPath == "" || !ws.src.Has(ws.RelsPath) {
		return nil
	}
	data, err := archive.ReadAll(ws.src, ws.RelsPath)
	if err != nil {
		ws.log.Debug("sheet relationships unreadable", "part", ws.RelsPath, "err", err)
		return nil
	}
	m, err := rels.ParseBytes(data)
	if err != nil {
		ws.log.Debug("sheet relationships unreadable", "part", ws.RelsPath, "err", err)
		return nil
	}
	return m
}
