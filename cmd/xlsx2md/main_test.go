package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxtable/internal/xlsxtest"
)

func writeBook(t *testing.T) string {
	t.Helper()
	book := xlsxtest.Book{
		SharedStrings: []string{"Item", "Price", "tea|leaf", "Notes: a/b"},
		Sheets: []xlsxtest.Sheet{
			{Name: "Prices", XML: xlsxtest.SheetXML("A1:B2",
				`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>`+
					`<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>2.456</v></c></row>`, "")},
			{Name: "Notes: a/b", State: "hidden", XML: xlsxtest.SheetXML("A1",
				`<row r="1"><c r="A1" t="s"><v>3</v></c></row>`, "")},
			{Name: "Blank", XML: xlsxtest.SheetXML("", "", "")},
		},
	}
	return xlsxtest.WriteFile(t, "book.xlsx", book.Build(t))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvertToStdout(t *testing.T) {
	path := writeBook(t)
	out, _, err := execute(t, path, "--precision", "1", "--skip-hidden")
	require.NoError(t, err)
	assert.Equal(t, "# Prices\n\n|Item|Price|\n|---|---|\n|tea\\|leaf|2.5|\n", out)
}

func TestConvertOptions(t *testing.T) {
	path := writeBook(t)
	out, _, err := execute(t, path, "--sheet", "prices", "--body-head", "--align", "left")
	require.NoError(t, err)
	assert.Equal(t, "# Prices\n\n|||\n|:--|:--|\n|**Item**|**Price**|\n|tea\\|leaf|2.456|\n", out)
}

func TestConvertToDirectory(t *testing.T) {
	path := writeBook(t)
	dir := filepath.Join(t.TempDir(), "md")
	out, _, err := execute(t, path, "--out", dir)
	require.NoError(t, err)

	prices := filepath.Join(dir, "Prices.md")
	notes := filepath.Join(dir, "Notes_ a_b.md")
	assert.Equal(t, prices+"\n"+notes+"\n", out)

	data, err := os.ReadFile(notes)
	require.NoError(t, err)
	assert.Equal(t, "|Notes: a/b|\n|---|\n", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "Blank.md"))
}

func TestListSheets(t *testing.T) {
	out, _, err := execute(t, writeBook(t), "--list")
	require.NoError(t, err)
	assert.Equal(t,
		"1\tPrices\tvisible\t2 rows x 2 columns\n"+
			"2\tNotes: a/b\thidden\t1 rows x 1 columns\n"+
			"3\tBlank\tvisible\tempty\n", out)
}

func TestVerboseLogging(t *testing.T) {
	_, stderr, err := execute(t, writeBook(t), "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "dataset read")
}

func TestErrors(t *testing.T) {
	path := writeBook(t)

	_, _, err := execute(t)
	assert.Error(t, err, "input file is required")

	_, _, err = execute(t, path, "--align", "diagonal")
	assert.ErrorContains(t, err, "unknown alignment")

	_, _, err = execute(t, path, "--sheet", "Nope")
	assert.ErrorContains(t, err, `"Nope" not found`)

	_, _, err = execute(t, filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Sheet1":     "Sheet1",
		"a/b\\c":     "a_b_c",
		"Q1: *new*?": "Q1_ _new__",
		"..":         "sheet",
		"  ":         "sheet",
	}
	for in, want := range tests {
		assert.Equal(t, want, fileName(in), in)
	}
}
