package worksheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/internal/oadate"
)

// Cell type codes (the t attribute of <c>).
const (
	typeSharedString = "s"
	typeInlineString = "inlineStr"
	typeFormulaStr   = "str"
	typeBoolean      = "b"
	typeError        = "e"
	typeISODate      = "d"
)

// resolveValue turns a raw cell payload into a typed value.  The explicit
// type code wins; untyped cells are classified through their style's
// number format: date formats turn serials into DateTime, the text format
// keeps the raw string, anything else stays a number.
func (ws *Worksheet) resolveValue(rc rawCell) (dataset.Value, error) {
	raw := rc.value
	num, isNum := parseNumber(raw)

	switch rc.typ {
	case typeSharedString:
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return dataset.Value{}, errs.Malformed("shared string index %q is not a number", raw)
		}
		s, err := ws.cfg.SST.Get(idx)
		if err != nil {
			return dataset.Value{}, err
		}
		return dataset.TextValue(s), nil
	case typeInlineString, typeFormulaStr, typeError:
		return dataset.TextValue(raw), nil
	case typeBoolean:
		return dataset.BoolValue(raw == "1"), nil
	case typeISODate:
		if t, ok := parseISODate(raw); ok {
			return dataset.DateValue(ws.serialOf(t), t), nil
		}
		return dataset.TextValue(raw), nil
	}

	if rc.style != "" && ws.cfg.Styles != nil {
		idx, err := strconv.Atoi(rc.style)
		if err != nil {
			return dataset.Value{}, errs.Malformed("style index %q is not a number", rc.style)
		}
		xf, err := ws.cfg.Styles.Get(idx)
		if err != nil {
			return dataset.Value{}, err
		}
		switch {
		case isNum && ws.cfg.Styles.IsDate(xf):
			t, err := oadate.ConvertEx(num, ws.cfg.Date1904)
			if err == nil {
				return dataset.DateValue(num, t), nil
			}
			// negative or out-of-range serials keep their number
			ws.log.Debug("serial is not a date", "cell", rc.ref, "err", err)
		case ws.cfg.Styles.IsText(xf):
			return dataset.TextValue(raw), nil
		}
	}

	if isNum {
		return dataset.NumberValue(num), nil
	}
	return dataset.TextValue(raw), nil
}

// parseNumber is a culture-invariant decimal parse.  strconv also accepts
// hex floats, underscores, "Inf" and "NaN", none of which a cell value
// means as a number.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

func parseISODate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// serialOf is the inverse of the serial conversion for instants after
// 1900-03-01 (or any instant in the 1904 system).
func (ws *Worksheet) serialOf(t time.Time) float64 {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	if ws.cfg.Date1904 {
		epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	secs := t.Unix() - epoch.Unix()
	return float64(secs)/86400 + float64(t.Nanosecond())/86400e9
}
