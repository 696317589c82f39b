package worksheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/internal/xlsxtest"
)

func tableOf(name string, cols, rows int) *dataset.Table {
	tbl := dataset.NewTable(name, cols)
	for range rows {
		tbl.Append(dataset.NewRow(cols))
	}
	return tbl
}

func TestResolveHyperlinks(t *testing.T) {
	links := `<hyperlinks>` +
		`<hyperlink ref="A1" r:id="rId1"/>` +
		`<hyperlink ref="B1" display="shown" location="Sheet2!A1"/>` +
		`<hyperlink ref="A2:B2" location="Top"/>` +
		`<hyperlink ref="Z99" display="far"/>` +
		`<hyperlink ref="not a ref" display="bad"/>` +
		`<hyperlink ref="A3" r:id="rId7" display="fallback"/>` +
		`</hyperlinks>`
	doc := xlsxtest.SheetXML("A1:B3", `<row r="1"><c r="A1"><v>1</v></c></row>`, links)
	relsDoc := xlsxtest.HyperlinkRels(map[string]string{"rId1": "https://example.com/a?b=1&c=2"})

	ws := newSheet(t, doc, relsDoc, Config{})
	tbl := tableOf("Sheet1", 2, 3)
	n, err := ws.ResolveHyperlinks(tbl)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, &dataset.Hyperlink{Target: "https://example.com/a?b=1&c=2"}, tbl.Cell(1, 1).Link)
	assert.Equal(t, &dataset.Hyperlink{Target: "shown", Fragment: "Sheet2!A1"}, tbl.Cell(2, 1).Link)
	assert.Equal(t, &dataset.Hyperlink{Fragment: "Top"}, tbl.Cell(1, 2).Link)
	assert.Equal(t, &dataset.Hyperlink{Fragment: "Top"}, tbl.Cell(2, 2).Link)
	assert.Equal(t, &dataset.Hyperlink{Target: "fallback"}, tbl.Cell(1, 3).Link, "unknown r:id falls back to the display text")
	assert.Nil(t, tbl.Cell(2, 3).Link)
}

func TestResolveHyperlinksRangeClipped(t *testing.T) {
	doc := xlsxtest.SheetXML("A1:B2", "", `<hyperlinks><hyperlink ref="B2:D9" location="X"/></hyperlinks>`)
	tbl := tableOf("Sheet1", 2, 2)
	n, err := newSheet(t, doc, "", Config{}).ResolveHyperlinks(tbl)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotNil(t, tbl.Cell(2, 2).Link)
}

func TestResolveHyperlinksNone(t *testing.T) {
	doc := xlsxtest.SheetXML("A1", `<row r="1"><c r="A1"><v>1</v></c></row>`, "")
	tbl := tableOf("Sheet1", 1, 1)
	n, err := newSheet(t, doc, "", Config{}).ResolveHyperlinks(tbl)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, tbl.Cell(1, 1).Link)
}

func TestResolveHyperlinksBrokenRels(t *testing.T) {
	doc := xlsxtest.SheetXML("A1", "", `<hyperlinks><hyperlink ref="A1" r:id="rId1" display="text"/></hyperlinks>`)
	tbl := tableOf("Sheet1", 1, 1)
	n, err := newSheet(t, doc, "<Relationships", Config{}).ResolveHyperlinks(tbl)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "text", tbl.Cell(1, 1).Link.Target)
}
