package textextract

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal single-page PDF with the given content
// stream, computing the xref table offsets as it goes.
func buildPDF(contentStream string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(contentStream), contentStream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return buf.Bytes()
}

func TestExtract_SinglePage(t *testing.T) {
	data := buildPDF("BT /F1 12 Tf 72 720 Td (X is 42) Tj ET")

	result, err := Extract(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)
	assert.Contains(t, result.Content, "X is 42")
}

func TestExtract_NoText(t *testing.T) {
	// A page whose content stream draws nothing yields no text at all.
	data := buildPDF("0 0 m 100 100 l S")

	result, err := Extract(bytes.NewReader(data), int64(len(data)))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtract_InvalidBytes(t *testing.T) {
	garbage := []byte("definitely not a pdf")

	result, err := Extract(bytes.NewReader(garbage), int64(len(garbage)))
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoText)
}
