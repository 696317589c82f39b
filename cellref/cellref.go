// Package cellref converts A1-style cell references to 1-based (column, row)
// pairs and back.
//
// Column letters use bijective base-26 numbering: there is no zero digit, so
// A=1 … Z=26, AA=27, AZ=52, BA=53, AMJ=1024, XFD=16384.  A plain base-26
// conversion would decode every multi-letter column wrongly.
package cellref

import (
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/TsubasaBE/go-xlsxtable/errs"
)

const (
	// MaxColumns is the largest column number a worksheet can address (XFD).
	MaxColumns = 16384
	// MaxRows is the largest row number a worksheet can address.
	MaxRows = 1048576
)

// Range is a rectangular block of cells, 1-based and inclusive.
type Range struct {
	FirstCol, FirstRow int
	LastCol, LastRow   int
}

// Contains reports whether (col, row) lies inside the range.
func (r Range) Contains(col, row int) bool {
	return col >= r.FirstCol && col <= r.LastCol && row >= r.FirstRow && row <= r.LastRow
}

// Decode parses a reference such as "C7", "aa10" or "$B$3" into its 1-based
// column and row numbers.
func Decode(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, &errs.ReferenceError{Ref: ref, Reason: "empty reference"}
	}
	start := 0
	if ref[start] == '$' {
		start++
	}
	i := start
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == start {
		return 0, 0, &errs.ReferenceError{Ref: ref, Reason: "missing column letters"}
	}
	col, err = ColumnNumber(ref[start:i])
	if err != nil {
		var re *errs.ReferenceError
		if errors.As(err, &re) {
			return 0, 0, &errs.ReferenceError{Ref: ref, Reason: re.Reason}
		}
		return 0, 0, err
	}
	if i < len(ref) && ref[i] == '$' {
		i++
	}
	digits := 0
	for ; i < len(ref); i++ {
		c := ref[i]
		if c < '0' || c > '9' {
			break
		}
		row = row*10 + int(c-'0')
		if row > MaxRows {
			return 0, 0, &errs.ReferenceError{Ref: ref, Reason: "row beyond worksheet limit"}
		}
		digits++
	}
	if digits == 0 {
		return 0, 0, &errs.ReferenceError{Ref: ref, Reason: "missing row number"}
	}
	if i != len(ref) {
		return 0, 0, &errs.ReferenceError{Ref: ref, Reason: "unexpected character " + string(ref[i])}
	}
	if row == 0 {
		return 0, 0, &errs.ReferenceError{Ref: ref, Reason: "row numbers start at 1"}
	}
	return col, row, nil
}

// Encode is the inverse of Decode: Encode(27, 1) == "AA1".
func Encode(col, row int) (string, error) {
	s, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", &errs.ReferenceError{Ref: "", Reason: err.Error()}
	}
	return s, nil
}

// ColumnNumber decodes column letters alone ("A" → 1, "AMJ" → 1024).
func ColumnNumber(letters string) (int, error) {
	if letters == "" {
		return 0, &errs.ReferenceError{Ref: letters, Reason: "empty column"}
	}
	col := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return 0, &errs.ReferenceError{Ref: letters, Reason: "non-alphabetic column"}
		}
		col = col*26 + int(c-'A') + 1
		if col > MaxColumns {
			return 0, &errs.ReferenceError{Ref: letters, Reason: "column beyond XFD"}
		}
	}
	return col, nil
}

func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

// ColumnName encodes a 1-based column number as letters (28 → "AB").
func ColumnName(col int) (string, error) {
	s, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "", &errs.ReferenceError{Ref: "", Reason: err.Error()}
	}
	return s, nil
}

// DecodeRange parses "A1:C3" (or a single cell, giving a one-cell range).
// Corners given in reverse order are normalised.
func DecodeRange(ref string) (Range, error) {
	first, last, isRange := strings.Cut(ref, ":")
	c1, r1, err := Decode(first)
	if err != nil {
		return Range{}, err
	}
	if !isRange {
		return Range{FirstCol: c1, FirstRow: r1, LastCol: c1, LastRow: r1}, nil
	}
	c2, r2, err := Decode(last)
	if err != nil {
		return Range{}, err
	}
	return Range{
		FirstCol: min(c1, c2),
		FirstRow: min(r1, r2),
		LastCol:  max(c1, c2),
		LastRow:  max(r1, r2),
	}, nil
}
