// Package markdown renders a dataset as markdown tables, one per sheet.
//
// The first row of a table becomes the markdown header row unless
// Options.BodyHead is set, in which case an empty header row is emitted and
// the first row is kept in the body in bold.  Cell text has line breaks
// turned into <br/> and pipes escaped.  Hyperlinked cells render as
// [text](target#fragment); cells holding a HYPERLINK formula that points
// into another table render as a link to that table's heading.
package markdown

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/TsubasaBE/go-xlsxtable/dataset"
)

// Align is the column alignment written in the delimiter row.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "none"
}

// ParseAlign maps "left", "center", "right" or "none" (any case) to an
// Align.
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AlignNone, nil
	case "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignNone, fmt.Errorf("markdown: unknown alignment %q", s)
}

// Options controls rendering.
type Options struct {
	// BodyHead keeps the first row in the body, in bold, under an empty
	// header row.
	BodyHead bool
	Align    Align
	// DecimalPrecision is applied to decimal numbers when
	// HasDecimalPrecision is set.  Zero truncates to an integer.
	DecimalPrecision    int
	HasDecimalPrecision bool
	// Pad aligns the cell borders of every row by padding with spaces to
	// the display width of the widest cell in each column.
	Pad bool
}

var (
	decimalPattern = regexp.MustCompile(`^(-?[0-9]{1,}[.][0-9]*)$`)
	lineBreaks     = regexp.MustCompile(`\r\n?|\n`)
)

// Render writes every table of ds, each under a "# <name>" heading.
func Render(w io.Writer, ds *dataset.Dataset, opts Options) error {
	for i, tbl := range ds.Tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n\n", tbl.Name); err != nil {
			return err
		}
		if err := WriteTable(w, ds, tbl, opts); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable writes tbl as one markdown table.  ds resolves formula
// hyperlinks; it may be nil.  Trailing all-empty rows and columns are
// dropped and an empty table writes nothing.
func WriteTable(w io.Writer, ds *dataset.Dataset, tbl *dataset.Table, opts Options) error {
	_, err := io.WriteString(w, Table(ds, tbl, opts))
	return err
}

// Table renders tbl as a string; see WriteTable.
func Table(ds *dataset.Dataset, tbl *dataset.Table, opts Options) string {
	nrows, ncols := shrink(tbl)
	if nrows == 0 || ncols == 0 {
		return ""
	}

	cells := make([][]string, nrows)
	for r := range nrows {
		cells[r] = make([]string, ncols)
		for c := range ncols {
			text := CellText(ds, tbl.Rows[r][c], opts)
			if r == 0 && opts.BodyHead && text != "" {
				text = "**" + text + "**"
			}
			cells[r][c] = text
		}
	}

	widths := make([]int, ncols)
	if opts.Pad {
		for _, row := range cells {
			for c, text := range row {
				widths[c] = max(widths[c], displayWidth(text))
			}
		}
		for c := range widths {
			widths[c] = max(widths[c], 3)
		}
	}

	var sb strings.Builder
	header, body := cells[0], cells[1:]
	if opts.BodyHead {
		header, body = make([]string, ncols), cells
	}
	writeRow(&sb, header, widths, opts.Pad)
	writeDelimiter(&sb, widths, ncols, opts)
	for _, row := range body {
		writeRow(&sb, row, widths, opts.Pad)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, row []string, widths []int, pad bool) {
	sb.WriteByte('|')
	for c, text := range row {
		if pad {
			sb.WriteByte(' ')
			sb.WriteString(text)
			sb.WriteString(strings.Repeat(" ", widths[c]-displayWidth(text)))
			sb.WriteByte(' ')
		} else {
			sb.WriteString(text)
		}
		sb.WriteByte('|')
	}
	sb.WriteByte('\n')
}

func writeDelimiter(sb *strings.Builder, widths []int, ncols int, opts Options) {
	sb.WriteByte('|')
	for c := range ncols {
		n := 3
		if opts.Pad {
			n = widths[c]
		}
		cell := delimiter(opts.Align, n)
		if opts.Pad {
			cell = " " + cell + " "
		}
		sb.WriteString(cell)
		sb.WriteByte('|')
	}
	sb.WriteByte('\n')
}

// delimiter returns an n-character delimiter cell for a.
func delimiter(a Align, n int) string {
	switch a {
	case AlignLeft:
		return ":" + strings.Repeat("-", n-1)
	case AlignCenter:
		return ":" + strings.Repeat("-", n-2) + ":"
	case AlignRight:
		return strings.Repeat("-", n-1) + ":"
	}
	return strings.Repeat("-", n)
}

// CellText renders one value as markdown inline text.
func CellText(ds *dataset.Dataset, v dataset.Value, opts Options) string {
	text := v.String()
	if opts.HasDecimalPrecision && decimalPattern.MatchString(text) {
		text = applyPrecision(text, opts.DecimalPrecision)
	}
	text = escape(text)

	switch {
	case v.Link != nil:
		target := v.Link.String()
		if text == "" {
			text = escape(target)
		}
		return "[" + text + "](" + target + ")"
	case v.Index != nil && ds != nil:
		if ds.Table(v.Index.Sheet) == nil {
			return text
		}
		if text == "" {
			if ref, ok := ds.Resolve(*v.Index); ok {
				text = escape(ref.String())
			}
		}
		return "[" + text + "](#" + Anchor(v.Index.Sheet) + ")"
	}
	return text
}

func applyPrecision(text string, precision int) string {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return text
	}
	if precision > 0 {
		return strconv.FormatFloat(f, 'f', precision, 64)
	}
	return strconv.FormatInt(int64(f), 10)
}

func escape(s string) string {
	s = lineBreaks.ReplaceAllString(s, "<br/>")
	return strings.ReplaceAll(s, "|", `\|`)
}

// Anchor returns the fragment a markdown viewer generates for the heading
// "# name": lower-cased, spaces as hyphens, punctuation other than '-' and
// '_' removed.
func Anchor(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ':
			sb.WriteByte('-')
		case r == '-', r == '_':
			sb.WriteRune(r)
		case r < 0x80 && !isAlnum(r):
			// dropped
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}

// displayWidth counts East Asian wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// shrink returns the number of leading rows and columns that hold anything
// to render.
func shrink(tbl *dataset.Table) (rows, cols int) {
	for r, row := range tbl.Rows {
		for c, v := range row {
			if !v.IsEmpty() || v.Link != nil {
				rows = r + 1
				cols = max(cols, c+1)
			}
		}
	}
	return rows, cols
}
