package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"nim", "nama_lengkap"},
		Records: [][]string{{"A1", "Ann, Jr."}, {"B2", "Bob"}},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "nim,nama_lengkap\nA1,\"Ann, Jr.\"\nB2,Bob\n", string(out))
}

func TestCSVExporterRejectsMisalignedRecords(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Headers: []string{"a", "b"}, Records: [][]string{{"1"}}})
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	records := make([][]string, 0, 80)
	for i := 0; i < 80; i++ {
		records = append(records, []string{"A1", "Siti Nurhaliza Ramadhani", strings.Repeat("x", 60)})
	}
	out, err := NewPDFExporter().Render(Dataset{Headers: []string{"nim", "nama", "catatan"}, Records: records}, "Applications")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsSpanPage(t *testing.T) {
	widths := columnWidths(Dataset{Headers: []string{"a", "bbbb"}, Records: [][]string{{"cccccccc", "d"}}})
	require.Len(t, widths, 2)
	assert.InDelta(t, pageWidth, widths[0]+widths[1], 0.001)
	assert.Greater(t, widths[0], widths[1])
	assert.Equal(t, 40, len([]rune(truncate(strings.Repeat("é", 100)))))
}
