package stringtable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TsubasaBE/go-xlsxtable/errs"
	"github.com/TsubasaBE/go-xlsxtable/internal/xlsxtest"
)

const richSST = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="5" uniqueCount="5">
  <si><t>alpha</t></si>
  <si><r><rPr><b/></rPr><t>bold</t></r><r><t xml:space="preserve"> and plain</t></r></si>
  <si><t>漢字</t><rPh sb="0" eb="2"><t>かんじ</t></rPh></si>
  <si><t>line_x000D_break</t></si>
  <si><t/></si>
</sst>`

func TestNew(t *testing.T) {
	st, err := New(strings.NewReader(richSST))
	require.NoError(t, err)
	require.Equal(t, 5, st.Len())

	tests := []struct {
		idx  int
		want string
	}{
		{0, "alpha"},
		{1, "bold and plain"},
		{2, "漢字"},
		{3, "line\rbreak"},
		{4, ""},
	}
	for _, tc := range tests {
		got, err := st.Get(tc.idx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "index %d", tc.idx)
	}
}

// The fourth entry is index 3; anything past the end is a corrupt reference.
func TestGetIndexing(t *testing.T) {
	st, err := New(strings.NewReader(xlsxtest.SharedStringsXML("a", "b", "c", "d")))
	require.NoError(t, err)

	got, err := st.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "d", got)

	for _, idx := range []int{4, 100, -1} {
		_, err := st.Get(idx)
		assert.ErrorIs(t, err, errs.ErrOutOfRangeIndex, "index %d", idx)
	}
}

func TestNilTable(t *testing.T) {
	var st *StringTable
	assert.Equal(t, 0, st.Len())
	_, err := st.Get(0)
	assert.ErrorIs(t, err, errs.ErrOutOfRangeIndex)
}

func TestNewMalformed(t *testing.T) {
	_, err := New(strings.NewReader(`<sst><si><t>open`))
	assert.Error(t, err)
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a_x000A_b", "a\nb"},
		{"tab_x0009_", "tab\t"},
		{"_x005F_x000D_", "_x000D_"},
		{"_xZZZZ_", "_xZZZZ_"},
		{"_x00", "_x00"},
		{"snake_case_x", "snake_case_x"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Unescape(tc.in), tc.in)
	}
}

func TestFromStrings(t *testing.T) {
	src := []string{"x", "y"}
	st := FromStrings(src...)
	src[0] = "changed"
	got, err := st.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}
