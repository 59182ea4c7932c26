package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"first_name", "mobile"},
		Rows: []map[string]string{
			{"first_name": "Jane", "mobile": "0412345678"},
			{"first_name": "José", "mobile": "0498765432"},
		},
	}
}

func TestCSVRenderDefaults(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), CSVOptions{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "first_name,mobile", lines[0])
	assert.Equal(t, "Jane,0412345678", lines[1])
}

func TestCSVRenderCustomDelimiter(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "first_name;mobile"))
}

func TestCSVRenderLatin1SubstitutesUnmappableRunes(t *testing.T) {
	data := Dataset{
		Headers: []string{"name"},
		Rows:    []map[string]string{{"name": "José 世"}},
	}
	out, err := NewCSVExporter().Render(data, CSVOptions{Encoding: EncodingLatin1})
	require.NoError(t, err)
	assert.Contains(t, string(out), "?")
	// é is inside ISO-8859-1 and survives as a single byte.
	assert.Contains(t, out, byte(0xE9))
}

func TestCSVRenderRejectsUnknownEncoding(t *testing.T) {
	_, err := NewCSVExporter().Render(sampleDataset(), CSVOptions{Encoding: "utf-16"})
	require.Error(t, err)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, CSVOptions{})
	require.Error(t, err)
}
