package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Due reviews",
		Headers: []string{"document", "due"},
		Rows: []map[string]string{
			{"document": "Operating Systems", "due": "2024-05-10"},
			{"document": "Data, Structures", "due": "2024-05-11"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "document,due\nOperating Systems,2024-05-10\n\"Data, Structures\",2024-05-11\n", string(out))
}

func TestPDFRender(t *testing.T) {
	ds := sampleDataset()
	for i := 0; i < 60; i++ {
		ds.Rows = append(ds.Rows, map[string]string{"document": "Networks", "due": "2024-06-01"})
	}
	out, err := NewPDFExporter().Render(ds)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", r.Extension())

	r, err = ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, ".csv", r.Extension())

	_, err = ForFormat("xlsx")
	require.Error(t, err)
}
