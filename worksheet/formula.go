package worksheet

import (
	"strings"

	"github.com/TsubasaBE/go-xlsxtable/cellref"
	"github.com/TsubasaBE/go-xlsxtable/dataset"
)

const (
	hyperlinkPrefix    = "HYPERLINK("
	brokenLinkPrefix   = "HYPERLINK(#REF!"
	sheetSeparator     = '!'
	formulaArgSep      = ','
	formulaArgsEnd     = ')'
	formulaStringQuote = '"'
	sheetQuote         = '\''
)

func isHyperlinkFormula(f string) bool {
	return len(f) >= len(hyperlinkPrefix) && strings.EqualFold(f[:len(hyperlinkPrefix)], hyperlinkPrefix)
}

// ParseHyperlinkFormula extracts the cell a HYPERLINK(...) formula points
// at.  The first argument is split on '!' into a sheet name and a cell
// reference; without a sheet name the link refers to currentSheet.  The
// string form HYPERLINK("#Sheet2!B3", ...) is accepted as well.
//
// Formulas that are not HYPERLINK calls, and links whose target was
// deleted (HYPERLINK(#REF!, ...)), yield nil without error.  A first
// argument that is not a cell reference (an external URL, an expression)
// yields an error matching errs.ErrMalformedReference.
func ParseHyperlinkFormula(currentSheet, formula string) (*dataset.HyperlinkIndex, error) {
	f := strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if !isHyperlinkFormula(f) {
		return nil, nil
	}
	if strings.HasPrefix(strings.ToUpper(f), brokenLinkPrefix) {
		return nil, nil
	}

	arg := firstArg(f[len(hyperlinkPrefix):])
	if len(arg) >= 2 && arg[0] == formulaStringQuote && arg[len(arg)-1] == formulaStringQuote {
		arg = strings.TrimPrefix(arg[1:len(arg)-1], "#")
	}

	sheet, ref := currentSheet, arg
	if pos := strings.LastIndexByte(arg, sheetSeparator); pos >= 0 {
		sheet, ref = unquoteSheet(arg[:pos]), arg[pos+1:]
	}
	col, row, err := cellref.Decode(ref)
	if err != nil {
		return nil, err
	}
	return &dataset.HyperlinkIndex{Sheet: sheet, Col: col, Row: row}, nil
}

// firstArg returns the text up to the first top-level ',' or ')', treating
// "..." strings and '...' sheet names as opaque.  A doubled quote inside
// either closes and reopens the run, which leaves it opaque.
func firstArg(args string) string {
	var quote byte
	for i := 0; i < len(args); i++ {
		switch c := args[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == formulaStringQuote, c == sheetQuote:
			quote = c
		case c == formulaArgSep, c == formulaArgsEnd:
			return strings.TrimSpace(args[:i])
		}
	}
	return strings.TrimSpace(args)
}

// unquoteSheet strips the quotes of 'My Sheet' and undoubles embedded
// quotes ('It''s' → It's).
func unquoteSheet(s string) string {
	if len(s) >= 2 && s[0] == sheetQuote && s[len(s)-1] == sheetQuote {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}
