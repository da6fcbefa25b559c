package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "Notes catalog",
		Columns: []Column{
			{Key: "id", Title: "ID", Weight: 1},
			{Key: "title", Title: "Title", Weight: 4},
			{Key: "tags"},
		},
		Rows: []map[string]string{
			{"id": "1", "title": "Introduction to Data Structures", "tags": "algorithms, programming"},
			{"id": "2", "title": "Database Normalization"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Title,tags", lines[0])
	assert.Equal(t, `1,Introduction to Data Structures,"algorithms, programming"`, lines[1])
	assert.Equal(t, "2,Database Normalization,", lines[2])
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns)
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	assert.InDelta(t, pageWidth, sum, 0.001)
	assert.InDelta(t, widths[0]*4, widths[1], 0.001)
}
