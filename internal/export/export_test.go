package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigardalal/databridge/internal/model"
)

func TestWriteCSV_SchemaOrderAndStringification(t *testing.T) {
	fields := []model.TargetField{
		{Name: "name"}, {Name: "qty"}, {Name: "active"},
	}
	rows := []model.Row{
		{"name": "Jordan", "qty": float64(2), "active": true},
		{"name": "Sam", "qty": 3.5}, // active missing → empty cell
	}

	var buf bytes.Buffer
	result, err := WriteCSV(&buf, fields, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordCount)
	assert.Equal(t, "csv", result.Format)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,qty,active", lines[0])
	assert.Equal(t, "Jordan,2,true", lines[1])
	assert.Equal(t, "Sam,3.5,", lines[2])
}

func TestWriteJSON(t *testing.T) {
	rows := []model.Row{{"a": float64(1)}}

	var buf bytes.Buffer
	result, err := WriteJSON(&buf, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordCount)
	assert.Contains(t, buf.String(), `"a": 1`)
}
