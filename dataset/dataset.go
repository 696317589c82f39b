// Package dataset is the result model handed to renderers: named tables of
// dense rows of typed cell values.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Empty Kind = iota
	Number
	Text
	Boolean
	DateTime
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Number:
		return "number"
	case Text:
		return "text"
	case Boolean:
		return "boolean"
	case DateTime:
		return "datetime"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Hyperlink is a link attached to a cell by the worksheet's <hyperlinks>
// section.
type Hyperlink struct {
	// Target is the relationship target (usually a URL) or, for links
	// without a relationship, the display text.
	Target string
	// Fragment is the location inside the target ("Sheet2!A1", "#top").
	Fragment string
}

// String joins target and fragment the way a browser would.
func (h Hyperlink) String() string {
	switch {
	case h.Fragment == "":
		return h.Target
	case h.Target == "":
		return "#" + h.Fragment
	}
	return h.Target + "#" + h.Fragment
}

// HyperlinkIndex is an intra-workbook cross reference taken from a
// HYPERLINK(...) formula.  Col and Row are 1-based.
type HyperlinkIndex struct {
	Sheet string
	Col   int
	Row   int
}

func (h HyperlinkIndex) String() string {
	return fmt.Sprintf("%s!C%dR%d", h.Sheet, h.Col, h.Row)
}

// Value is one cell.  Exactly one of the payload fields is meaningful,
// selected by Kind; Link and Index are independent decorations.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	// Serial is the raw day number of a DateTime value; Time is its
	// converted instant.
	Serial float64
	Time   time.Time

	Link  *Hyperlink
	Index *HyperlinkIndex
}

// NumberValue returns a Number value.
func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }

// TextValue returns a Text value.
func TextValue(s string) Value { return Value{Kind: Text, Str: s} }

// BoolValue returns a Boolean value.
func BoolValue(b bool) Value { return Value{Kind: Boolean, Bool: b} }

// DateValue returns a DateTime value for serial, converted to t.
func DateValue(serial float64, t time.Time) Value {
	return Value{Kind: DateTime, Serial: serial, Time: t}
}

// IsEmpty reports whether v holds no value.  A decorated empty cell still
// counts as empty.
func (v Value) IsEmpty() bool {
	return v.Kind == Empty
}

// String renders the value without any number formatting: numbers in
// shortest round-trip form, booleans as TRUE/FALSE, date-times as
// "2006-01-02" or "2006-01-02 15:04:05" when a time part is present.
func (v Value) String() string {
	switch v.Kind {
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Text:
		return v.Str
	case Boolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case DateTime:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format(time.DateOnly)
		}
		return v.Time.Format(time.DateTime)
	}
	return ""
}

// Row is a dense row; its length is the table's column count.
type Row []Value

// NewRow returns an all-empty row of n columns.
func NewRow(n int) Row {
	return make(Row, n)
}

// LastNonEmpty returns the index of the last non-empty value, or -1.
func (r Row) LastNonEmpty() int {
	for i := len(r) - 1; i >= 0; i-- {
		if !r[i].IsEmpty() {
			return i
		}
	}
	return -1
}

// Table is the grid of one sheet.
type Table struct {
	Name    string
	Columns int
	Rows    []Row
}

// NewTable returns an empty table of the given width.
func NewTable(name string, columns int) *Table {
	return &Table{Name: name, Columns: columns}
}

// Append adds r, padding or truncating it to the table width.
func (t *Table) Append(r Row) {
	switch {
	case len(r) < t.Columns:
		r = append(r, make(Row, t.Columns-len(r))...)
	case len(r) > t.Columns:
		r = r[:t.Columns]
	}
	t.Rows = append(t.Rows, r)
}

// Cell returns a pointer to the value at 1-based (col, row), or nil when
// outside the table.
func (t *Table) Cell(col, row int) *Value {
	if row < 1 || row > len(t.Rows) || col < 1 || col > len(t.Rows[row-1]) {
		return nil
	}
	return &t.Rows[row-1][col-1]
}

// Dataset is the ordered set of tables read from one workbook.
type Dataset struct {
	Tables []*Table
}

// Table returns the table named name (case-insensitive), or nil.
func (d *Dataset) Table(name string) *Table {
	for _, t := range d.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// Names returns the table names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Tables))
	for i, t := range d.Tables {
		names[i] = t.Name
	}
	return names
}

// Resolve looks up the cell an index points at.  ok is false when the
// sheet was not read or the cell lies outside its table.
func (d *Dataset) Resolve(idx HyperlinkIndex) (v Value, ok bool) {
	t := d.Table(idx.Sheet)
	if t == nil {
		return Value{}, false
	}
	c := t.Cell(idx.Col, idx.Row)
	if c == nil {
		return Value{}, false
	}
	return *c, true
}
