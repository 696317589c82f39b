package worksheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxtable/dataset"
	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/internal/xlsxtest"
)

func TestRowGapsAreFilled(t *testing.T) {
	doc := xlsxtest.SheetXML("A1:B5",
		`<row r="1"><c r="A1"><v>1</v></c></row>`+
			`<row r="3"><c r="B3"><v>3</v></c></row>`+
			`<row r="5"><c r="A5"><v>5</v></c></row>`, "")
	rows, err := readAll(t, newSheet(t, doc, "", Config{}), 2)
	require.NoError(t, err)
	require.Len(t, rows, 5, "row count equals the last stored row index")

	assert.Equal(t, dataset.NumberValue(1), rows[0][0])
	assert.Equal(t, dataset.NewRow(2), rows[1])
	assert.Equal(t, dataset.NumberValue(3), rows[2][1])
	assert.Equal(t, dataset.NewRow(2), rows[3])
	assert.Equal(t, dataset.NumberValue(5), rows[4][0])
	for i, r := range rows {
		assert.Len(t, r, 2, "row %d", i+1)
	}
}

func TestReadRowStateTransitions(t *testing.T) {
	doc := xlsxtest.SheetXML("",
		`<row r="1"><c r="A1"><v>1</v></c></row>`+
			`<row r="4"><c r="A4"><v>4</v></c></row>`, "")
	rr, err := newSheet(t, doc, "", Config{}).Rows(1)
	require.NoError(t, err)
	defer rr.Close()

	var st RowState
	steps := []struct {
		want    dataset.Row
		depth   int
		pending int
		parked  bool
	}{
		{dataset.Row{dataset.NumberValue(1)}, 1, 0, false},
		{dataset.NewRow(1), 2, 1, true},
		{dataset.NewRow(1), 3, 0, true},
		{dataset.Row{dataset.NumberValue(4)}, 4, 0, false},
	}
	for i, step := range steps {
		row, ok, err := rr.ReadRow(&st)
		require.NoError(t, err, "step %d", i)
		require.True(t, ok, "step %d", i)
		assert.Equal(t, step.want, row, "step %d", i)
		assert.Equal(t, step.depth, st.Depth, "step %d depth", i)
		assert.Equal(t, step.pending, st.PendingEmpty, "step %d pending", i)
		assert.Equal(t, step.parked, st.Lookahead != nil, "step %d lookahead", i)
	}

	_, ok, err := rr.ReadRow(&st)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = rr.ReadRow(&st)
	require.NoError(t, err)
	assert.False(t, ok, "end of rows is sticky")
}

func TestNoSheetData(t *testing.T) {
	doc := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><dimension ref="A1"/></worksheet>`
	rows, err := readAll(t, newSheet(t, doc, "", Config{}), 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMaxRowGap(t *testing.T) {
	doc := xlsxtest.SheetXML("",
		`<row r="1"><c r="A1"><v>1</v></c></row>`+
			`<row r="4"><c r="A4"><v>4</v></c></row>`, "")

	rows, err := readAll(t, newSheet(t, doc, "", Config{MaxRowGap: 2}), 1)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = readAll(t, newSheet(t, doc, "", Config{MaxRowGap: 1}), 1)
	assert.ErrorIs(t, err, errs.ErrRowGapExceeded)
}

func TestCellsBeyondWidthAreDropped(t *testing.T) {
	doc := xlsxtest.SheetXML("",
		`<row r="1"><c r="A1"><v>1</v></c><c r="C1"><v>3</v></c></row>`, "")
	rows, err := readAll(t, newSheet(t, doc, "", Config{}), 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dataset.Row{dataset.NumberValue(1), {}}, rows[0])
}

func TestEmptyPayloadsAreEmptyCells(t *testing.T) {
	doc := xlsxtest.SheetXML("",
		`<row r="1"><c r="A1" t="str"><f>""</f><v></v></c><c r="B1"><v/></c>`+
			`<c r="C1" t="inlineStr"><is><t></t></is></c><c r="D1" t="str"><v> </v></c></row>`, "")
	rows, err := readAll(t, newSheet(t, doc, "", Config{}), 4)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dataset.Row{{}, {}, {}, dataset.TextValue(" ")}, rows[0])
	assert.Equal(t, 3, rows[0].LastNonEmpty())
}

func TestMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want error
	}{
		{"row without index", `<row><c r="A1"><v>1</v></c></row>`, errs.ErrMalformedSheet},
		{"non-numeric row index", `<row r="x"><c r="A1"><v>1</v></c></row>`, errs.ErrMalformedSheet},
		{"row zero", `<row r="0"></row>`, errs.ErrMalformedSheet},
		{"row beyond the sheet", `<row r="1048577"></row>`, errs.ErrMalformedSheet},
		{"rows out of order", `<row r="2"></row><row r="1"></row>`, errs.ErrMalformedSheet},
		{"duplicate row", `<row r="1"></row><row r="1"></row>`, errs.ErrMalformedSheet},
		{"cell without reference", `<row r="1"><c><v>1</v></c></row>`, errs.ErrMalformedSheet},
		{"bad cell reference", `<row r="1"><c r="1A"><v>1</v></c></row>`, errs.ErrMalformedReference},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readAll(t, newSheet(t, xlsxtest.SheetXML("", tc.rows, ""), "", Config{}), 1)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTruncatedRow(t *testing.T) {
	doc := `<worksheet><sheetData><row r="1"><c r="A1"><v>1</v>`
	_, err := readAll(t, newSheet(t, doc, "", Config{}), 1)
	assert.Error(t, err)
}
