package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"date", "student"},
		Rows: []map[string]string{
			{"date": "2026-02-01", "student": "Kim"},
			{"date": "2026-02-02"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.Equal(t, "date,student\n2026-02-01,Kim\n2026-02-02,\n", string(out[len(utf8BOM):]))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := (&CSVExporter{}).Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Consultations", "2026-02-01 ~ 2026-02-28")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
}
