package textextract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF parses but yields no extractable text
// (scanned-image-only documents, unsupported encodings).
var ErrNoText = errors.New("no extractable text in document")

type ExtractedText struct {
	Content string
	Pages   int
}

// Extract reads every page of a PDF in order and concatenates the text it
// can recover. Pages without extractable text contribute nothing and are
// not an error; a document whose pages all come up empty is.
func Extract(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	if strings.TrimSpace(buf.String()) == "" {
		return nil, ErrNoText
	}

	return &ExtractedText{
		Content: buf.String(),
		Pages:   numPages,
	}, nil
}
