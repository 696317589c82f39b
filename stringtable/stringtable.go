// Package stringtable parses the shared-string part (xl/sharedStrings.xml)
// of a workbook and provides indexed access to the decoded strings.
package stringtable

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TsubasaBE/go-xlsxtable/errs"
)

// StringTable holds the shared strings of one workbook.  It is immutable
// once built.
type StringTable struct {
	strings []string
}

// New streams the <sst> document from r.  Each <si> item contributes one
// entry: its plain <t> text, or the concatenated <t> runs of a rich-text
// item.  Phonetic hints (<rPh>) are not part of the cell text and are
// dropped.  Escape sequences are decoded here, once per string.
func New(r io.Reader) (*StringTable, error) {
	st := &StringTable{}
	dec := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		inSI   bool
		inRPh  int
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stringtable: %w", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "sst":
				if n, err := strconv.Atoi(attr(tok, "uniqueCount")); err == nil && n > 0 && n < 1<<20 {
					st.strings = make([]string, 0, n)
				}
			case "si":
				inSI = true
				sb.Reset()
			case "rPh":
				inRPh++
			case "t":
				inText = inSI && inRPh == 0
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "si":
				st.strings = append(st.strings, Unescape(sb.String()))
				inSI = false
			case "rPh":
				inRPh--
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(tok)
			}
		}
	}
	return st, nil
}

// FromStrings builds a table from already-decoded strings.
func FromStrings(items ...string) *StringTable {
	return &StringTable{strings: append([]string(nil), items...)}
}

// Get returns the string at idx.  An index outside the table yields an
// error matching errs.ErrOutOfRangeIndex: a cell pointing past the table
// means the document is corrupt.
func (st *StringTable) Get(idx int) (string, error) {
	if st == nil || idx < 0 || idx >= len(st.strings) {
		return "", errs.OutOfRange("shared string", idx, st.Len())
	}
	return st.strings[idx], nil
}

// Len returns the number of shared strings.
func (st *StringTable) Len() int {
	if st == nil {
		return 0
	}
	return len(st.strings)
}

func attr(tok xml.StartElement, name string) string {
	for _, a := range tok.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Unescape decodes the _xHHHH_ escapes that OOXML uses for characters XML
// cannot carry (control characters, lone CR).  "_x005F_" escapes a literal
// underscore, so "_x005F_x000D_" decodes to the text "_x000D_".
func Unescape(s string) string {
	if !strings.Contains(s, "_x") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if r, ok := escapeAt(s, i); ok {
			b.WriteRune(r)
			i += 7
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func escapeAt(s string, i int) (rune, bool) {
	if i+7 > len(s) || s[i] != '_' || s[i+1] != 'x' || s[i+6] != '_' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i+2:i+6], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
