// Package dateformat decides whether a number-format code renders its value
// as a date or time.
//
// It is shared by styles/ and the root package; it has no public-API
// contract of its own.
package dateformat

import (
	"strings"

	"github.com/xuri/nfp"
)

// TextFormatID is the built-in "@" format.  Cells styled with it keep their
// raw text even when it looks numeric.
const TextFormatID = 49

// IsBuiltInDateID reports whether id is one of the built-in numFmtIds that
// format a date or time:
//
//	14–17   dates (m/d/yy, d-mmm-yy, d-mmm, mmm-yy)
//	18–21   times
//	22      m/d/yy h:mm
//	45–47   mm:ss, [h]:mm:ss, mm:ss.0
//
// The locale-specific CJK ids are not treated as dates unless the workbook
// defines their code explicitly in numFmts.
func IsBuiltInDateID(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// Normalize lower-cases a format code and removes quoted literals, escaped
// characters and bracketed colour/locale sections, so that the date letters
// in "\"Day\" 0" or "[Red]0" are not mistaken for date tokens.  Elapsed-time
// brackets ([h], [mm], [ss]) are kept.
func Normalize(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	rs := []rune(code)
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; c {
		case '"':
			for i++; i < len(rs) && rs[i] != '"'; i++ {
			}
		case '\\':
			i++
		case '_', '*':
			// padding and fill take the following character as an argument
			i++
		case '[':
			j := i + 1
			for j < len(rs) && rs[j] != ']' {
				j++
			}
			inner := strings.ToLower(string(rs[i+1 : min(j, len(rs))]))
			if isElapsed(inner) {
				b.WriteString("[" + inner + "]")
			}
			i = j
		default:
			b.WriteString(strings.ToLower(string(c)))
		}
	}
	return b.String()
}

func isElapsed(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != 'h' && c != 'm' && c != 's' {
			return false
		}
	}
	return true
}

// IsDateCode reports whether a custom format code formats dates or times.
// A section qualifies when it carries a date/time token made of d, m, y, h,
// s or an AM/PM marker and no # placeholder.  0 and ? placeholders are
// allowed; fractional seconds ("ss.000") still count.  The code is a date
// format if any section qualifies.
func IsDateCode(code string) bool {
	norm := Normalize(code)
	if norm == "" || norm == "general" {
		return false
	}
	ps := nfp.NumberFormatParser()
	for _, sec := range ps.Parse(norm) {
		if sectionIsDate(sec) {
			return true
		}
	}
	return false
}

func sectionIsDate(sec nfp.Section) bool {
	hasDate := false
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypeHashPlaceHolder:
			return false
		case nfp.TokenTypeDateTimes, nfp.TokenTypeElapsedDateTimes:
			if isDateToken(tok.TValue) {
				hasDate = true
			}
		}
	}
	return hasDate
}

func isDateToken(v string) bool {
	v = strings.ToLower(v)
	switch v {
	case "am/pm", "a/p":
		return true
	}
	return strings.ContainsAny(v, "dmyhs")
}
