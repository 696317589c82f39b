package markdown

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxtable/dataset"
)

func text(s string) dataset.Value { return dataset.TextValue(s) }
func num(f float64) dataset.Value { return dataset.NumberValue(f) }

func table(name string, rows ...dataset.Row) *dataset.Table {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	tbl := dataset.NewTable(name, cols)
	for _, r := range rows {
		tbl.Append(r)
	}
	return tbl
}

func TestTable(t *testing.T) {
	tbl := table("S",
		dataset.Row{text("Name"), text("Qty")},
		dataset.Row{text("apple"), num(3)},
		dataset.Row{text("pear"), num(1.5)},
	)
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "first row is the header",
			want: "|Name|Qty|\n|---|---|\n|apple|3|\n|pear|1.5|\n",
		},
		{
			name: "body head",
			opts: Options{BodyHead: true},
			want: "|||\n|---|---|\n|**Name**|**Qty**|\n|apple|3|\n|pear|1.5|\n",
		},
		{
			name: "left aligned",
			opts: Options{Align: AlignLeft},
			want: "|Name|Qty|\n|:--|:--|\n|apple|3|\n|pear|1.5|\n",
		},
		{
			name: "centered",
			opts: Options{Align: AlignCenter},
			want: "|Name|Qty|\n|:-:|:-:|\n|apple|3|\n|pear|1.5|\n",
		},
		{
			name: "padded and right aligned",
			opts: Options{Pad: true, Align: AlignRight},
			want: "| Name  | Qty |\n| ----: | --: |\n| apple | 3   |\n| pear  | 1.5 |\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Table(nil, tbl, tc.opts))
		})
	}
}

func TestTableShrinks(t *testing.T) {
	tbl := table("S",
		dataset.Row{text("a"), {}, {}},
		dataset.Row{{}, text("b"), {}},
		dataset.Row{{}, {}, {}},
	)
	assert.Equal(t, "|a||\n|---|---|\n||b|\n", Table(nil, tbl, Options{}))

	assert.Empty(t, Table(nil, table("E", dataset.Row{{}, {}}), Options{}))
	assert.Empty(t, Table(nil, dataset.NewTable("Z", 0), Options{}))
}

func TestPadWideRunes(t *testing.T) {
	tbl := table("S",
		dataset.Row{text("漢字"), text("x")},
		dataset.Row{text("a"), text("y")},
	)
	want := "| 漢字 | x   |\n| ---- | --- |\n| a    | y   |\n"
	assert.Equal(t, want, Table(nil, tbl, Options{Pad: true}))
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name string
		v    dataset.Value
		opts Options
		want string
	}{
		{"number", num(2.25), Options{}, "2.25"},
		{"precision rounds", num(1.23456), Options{HasDecimalPrecision: true, DecimalPrecision: 2}, "1.23"},
		{"precision zero truncates", num(-2.75), Options{HasDecimalPrecision: true}, "-2"},
		{"integers keep their form", num(42), Options{HasDecimalPrecision: true, DecimalPrecision: 2}, "42"},
		{"decimal-looking text", text("3.14159"), Options{HasDecimalPrecision: true, DecimalPrecision: 3}, "3.142"},
		{"version-like text untouched", text("1.2.3"), Options{HasDecimalPrecision: true, DecimalPrecision: 1}, "1.2.3"},
		{"line breaks", text("a\r\nb\nc\rd"), Options{}, "a<br/>b<br/>c<br/>d"},
		{"pipes", text("a|b"), Options{}, `a\|b`},
		{"boolean", dataset.BoolValue(false), Options{}, "FALSE"},
		{"empty", dataset.Value{}, Options{}, ""},
		{
			name: "external link",
			v:    dataset.Value{Kind: dataset.Text, Str: "site", Link: &dataset.Hyperlink{Target: "https://example.com", Fragment: "top"}},
			want: "[site](https://example.com#top)",
		},
		{
			name: "link on an empty cell shows its target",
			v:    dataset.Value{Link: &dataset.Hyperlink{Fragment: "Sheet2!A1"}},
			want: "[#Sheet2!A1](#Sheet2!A1)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CellText(nil, tc.v, tc.opts))
		})
	}
}

func TestCellTextIndex(t *testing.T) {
	details := table("My Details", dataset.Row{text("x"), text("target")})
	ds := &dataset.Dataset{Tables: []*dataset.Table{details}}

	v := dataset.TextValue("go")
	v.Index = &dataset.HyperlinkIndex{Sheet: "My Details", Col: 2, Row: 1}
	assert.Equal(t, "[go](#my-details)", CellText(ds, v, Options{}))

	empty := dataset.Value{Index: v.Index}
	assert.Equal(t, "[target](#my-details)", CellText(ds, empty, Options{}))

	v.Index = &dataset.HyperlinkIndex{Sheet: "Elsewhere", Col: 1, Row: 1}
	assert.Equal(t, "go", CellText(ds, v, Options{}), "links to unread sheets stay plain")
	assert.Equal(t, "go", CellText(nil, v, Options{}))
}

func TestAnchor(t *testing.T) {
	tests := map[string]string{
		"Sheet1":         "sheet1",
		"My Details":     "my-details",
		"Q1 (draft)":     "q1-draft",
		"snake_case-ok":  "snake_case-ok",
		"売上":             "売上",
		" padded name  ": "padded-name",
	}
	for in, want := range tests {
		assert.Equal(t, want, Anchor(in), in)
	}
}

func TestParseAlign(t *testing.T) {
	for in, want := range map[string]Align{"": AlignNone, "none": AlignNone, "Left": AlignLeft, "CENTER": AlignCenter, "right": AlignRight} {
		got, err := ParseAlign(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.NotEmpty(t, got.String())
	}
	_, err := ParseAlign("diagonal")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	ds := &dataset.Dataset{Tables: []*dataset.Table{
		table("One", dataset.Row{text("h")}, dataset.Row{num(1)}),
		table("Two", dataset.Row{text("k")}),
	}}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ds, Options{}))
	assert.Equal(t, "# One\n\n|h|\n|---|\n|1|\n\n# Two\n\n|k|\n|---|\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderWriteError(t *testing.T) {
	ds := &dataset.Dataset{Tables: []*dataset.Table{table("One", dataset.Row{text("h")})}}
	assert.EqualError(t, Render(failingWriter{}, ds, Options{}), "disk full")
}
