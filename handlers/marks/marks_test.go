package marks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkCSVSkipsHeaderLine(t *testing.T) {
	input := "reg_no,mark\n7376211CS101,44\n7376211CS102,22.5\n"

	rows, skipped, err := parseMarkCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 2)
	assert.Equal(t, "7376211CS101", rows[0].RegNo)
	assert.Equal(t, 44.0, rows[0].Mark)
	assert.Equal(t, 22.5, rows[1].Mark)
}

func TestParseMarkCSVNoHeader(t *testing.T) {
	rows, skipped, err := parseMarkCSV(strings.NewReader("7376211CS101,44\n"))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 1)
}

func TestParseMarkCSVReportsBadRows(t *testing.T) {
	input := "reg_no,mark\n7376211CS101,44\nonly-one-field\n7376211CS103,abc\n,50\n"

	rows, skipped, err := parseMarkCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, skipped, 3)
	assert.Contains(t, skipped[0], "line 3")
	assert.Contains(t, skipped[1], `invalid mark "abc"`)
	assert.Contains(t, skipped[2], "empty register number")
}

func TestParseMarkCSVEmptyInput(t *testing.T) {
	rows, skipped, err := parseMarkCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, skipped)
}
