package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigardalal/databridge/internal/model"
)

func TestParse_HeadersAndTypedRows(t *testing.T) {
	input := "Customer Name,Qty,Active\nJordan,2,true\nSam,3.5,false\n"

	parsed, err := Parse(strings.NewReader(input), "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Customer Name", "Qty", "Active"}, parsed.Headers)
	require.Len(t, parsed.Rows, 2)
	assert.Equal(t, "Jordan", parsed.Rows[0]["Customer Name"])
	assert.Equal(t, 2, parsed.Rows[0]["Qty"])
	assert.Equal(t, 3.5, parsed.Rows[1]["Qty"])
	assert.Equal(t, true, parsed.Rows[0]["Active"])
}

func TestParse_FiltersBlankRows(t *testing.T) {
	input := "a,b\n1,2\n,\n  ,  \n3,4\n"

	parsed, err := Parse(strings.NewReader(input), "upload.csv")
	require.NoError(t, err)
	assert.Len(t, parsed.Rows, 2)
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "upload.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrEmptyFile))

	// Header only, no data rows.
	_, err = Parse(strings.NewReader("a,b\n"), "upload.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrEmptyFile))
}

func TestParse_TrimsHeaderWhitespace(t *testing.T) {
	input := " a , b \n1,2\n"
	parsed, err := Parse(strings.NewReader(input), "upload.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parsed.Headers)
	assert.Equal(t, 1, parsed.Rows[0]["a"])
}

func TestParse_TSV(t *testing.T) {
	input := "a\tb\n1\t2\n"
	parsed, err := Parse(strings.NewReader(input), "upload.tsv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parsed.Headers)
	assert.Equal(t, 1, parsed.Rows[0]["a"])
}

func TestParse_RaggedRowsTolerated(t *testing.T) {
	input := "a,b,c\n1,2\n4,5,6,7\n"
	parsed, err := Parse(strings.NewReader(input), "upload.csv")
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	_, present := parsed.Rows[0]["c"]
	assert.False(t, present, "short rows leave trailing columns unset")
}
