package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"empty", Value{}, ""},
		{"integer", NumberValue(42), "42"},
		{"fraction", NumberValue(3.25), "3.25"},
		{"negative", NumberValue(-0.5), "-0.5"},
		{"text", TextValue("hello"), "hello"},
		{"true", BoolValue(true), "TRUE"},
		{"false", BoolValue(false), "FALSE"},
		{"date", DateValue(42370, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)), "2016-01-01"},
		{"datetime", DateValue(42370.5, time.Date(2016, 1, 1, 12, 0, 0, 0, time.UTC)), "2016-01-01 12:00:00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.String())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "datetime", DateTime.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestHyperlinkString(t *testing.T) {
	assert.Equal(t, "https://example.com/", Hyperlink{Target: "https://example.com/"}.String())
	assert.Equal(t, "https://example.com/#top", Hyperlink{Target: "https://example.com/", Fragment: "top"}.String())
	assert.Equal(t, "#Sheet2!A1", Hyperlink{Fragment: "Sheet2!A1"}.String())
}

func TestRowLastNonEmpty(t *testing.T) {
	r := NewRow(5)
	assert.Equal(t, -1, r.LastNonEmpty())
	r[2] = TextValue("x")
	assert.Equal(t, 2, r.LastNonEmpty())

	// decorations alone do not make a cell non-empty
	r[4].Link = &Hyperlink{Target: "u"}
	assert.Equal(t, 2, r.LastNonEmpty())
}

func TestTableAppendAndCell(t *testing.T) {
	tbl := NewTable("Data", 3)
	tbl.Append(Row{NumberValue(1)})
	tbl.Append(Row{NumberValue(1), NumberValue(2), NumberValue(3), NumberValue(4)})

	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Rows[0], 3)
	assert.Len(t, tbl.Rows[1], 3)

	c := tbl.Cell(3, 2)
	require.NotNil(t, c)
	assert.Equal(t, 3.0, c.Num)
	assert.Nil(t, tbl.Cell(4, 1))
	assert.Nil(t, tbl.Cell(1, 3))
	assert.Nil(t, tbl.Cell(0, 1))

	c.Link = &Hyperlink{Target: "x"}
	assert.NotNil(t, tbl.Rows[1][2].Link, "Cell returns a pointer into the table")
}

func TestDatasetResolve(t *testing.T) {
	a := NewTable("Index", 1)
	a.Append(Row{TextValue("see other")})
	b := NewTable("Sheet2", 2)
	b.Append(Row{Value{}, Value{}})
	b.Append(Row{Value{}, TextValue("target")})
	ds := &Dataset{Tables: []*Table{a, b}}

	assert.Equal(t, []string{"Index", "Sheet2"}, ds.Names())
	assert.Same(t, b, ds.Table("sheet2"))
	assert.Nil(t, ds.Table("missing"))

	v, ok := ds.Resolve(HyperlinkIndex{Sheet: "Sheet2", Col: 2, Row: 2})
	require.True(t, ok)
	assert.Equal(t, "target", v.Str)

	_, ok = ds.Resolve(HyperlinkIndex{Sheet: "Sheet2", Col: 3, Row: 1})
	assert.False(t, ok)
	_, ok = ds.Resolve(HyperlinkIndex{Sheet: "Nope", Col: 1, Row: 1})
	assert.False(t, ok)
}
