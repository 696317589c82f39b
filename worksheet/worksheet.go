// Package worksheet reads one worksheet part of an OpenXML workbook: it
// detects the sheet's bounds, streams its rows as dense typed values and
// resolves the <hyperlinks> section onto an already-read table.
//
// Every pass opens its own stream on the part and closes it before
// returning, so a Worksheet never holds a file handle between calls.
package worksheet

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"

	"github.com/TsubasaBE/go-xlsxtable/archive"
	"github.com/TsubasaBE/go-xlsxtable/stringtable"
	"github.com/TsubasaBE/go-xlsxtable/styles"
)

// Visibility is the state attribute of a <sheet> entry.
type Visibility int

const (
	// Visible sheets show a tab.
	Visible Visibility = iota
	// Hidden sheets can be unhidden from the spreadsheet UI.
	Hidden
	// VeryHidden sheets can only be unhidden programmatically.
	VeryHidden
)

// ParseVisibility maps a state attribute value to a Visibility.  Unknown
// values are treated as visible.
func ParseVisibility(state string) Visibility {
	switch state {
	case "hidden":
		return Hidden
	case "veryHidden":
		return VeryHidden
	}
	return Visible
}

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case VeryHidden:
		return "veryHidden"
	}
	return "visible"
}

// Descriptor locates one sheet inside the package.
type Descriptor struct {
	Name string
	// Path is the archive path of the worksheet part.
	Path string
	// RelsPath is the archive path of the worksheet's relationship part,
	// which may not exist.
	RelsPath   string
	Visibility Visibility
}

// Dimension is a 1-based, inclusive cell range.
type Dimension struct {
	FirstRow, LastRow int
	FirstCol, LastCol int
}

// Columns is the width of every row read under this dimension.  Rows are
// always addressed from column A, so it is LastCol rather than the span.
func (d Dimension) Columns() int {
	return d.LastCol
}

func (d Dimension) String() string {
	return fmt.Sprintf("R%dC%d:R%dC%d", d.FirstRow, d.FirstCol, d.LastRow, d.LastCol)
}

// Config carries the workbook-level tables and reader settings shared by
// every sheet.
type Config struct {
	SST      *stringtable.StringTable
	Styles   *styles.StyleTable
	Date1904 bool
	// SampleRows caps the sampling pass of DetectDimension.  Zero means 100.
	SampleRows int
	// MaxRowGap is the largest run of missing rows that may be synthesized
	// between two stored rows.  Zero means no limit.
	MaxRowGap int
	Logger    *slog.Logger
}

// DefaultSampleRows is the number of rows DetectDimension samples.
const DefaultSampleRows = 100

// Worksheet reads one sheet.  It is not safe for concurrent use; separate
// Worksheets over the same workbook may be used from separate goroutines.
type Worksheet struct {
	Descriptor

	src archive.Provider
	cfg Config
	log *slog.Logger
}

// New returns a reader for the sheet described by d.
func New(src archive.Provider, d Descriptor, cfg Config) *Worksheet {
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = DefaultSampleRows
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Worksheet{
		Descriptor: d,
		src:        src,
		cfg:        cfg,
		log:        log.With("sheet", d.Name),
	}
}

// open returns a fresh decoder over the worksheet part.
func (ws *Worksheet) open() (io.ReadCloser, *xml.Decoder, error) {
	rc, err := ws.src.Open(ws.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("worksheet: open %q: %w", ws.Path, err)
	}
	return rc, xml.NewDecoder(rc), nil
}

func attr(tok xml.StartElement, name string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
