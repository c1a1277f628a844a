package adapter

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
)

// ExtractText pulls plain text out of a reference document. PDFs are parsed
// page by page; anything else is treated as plain text. A document that
// yields no text is not an error here: the ingester treats it as a no-op.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read document", goerr.V("path", path))
		}
		return string(data), nil
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open PDF", goerr.V("path", path))
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract PDF text", goerr.V("path", path))
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read PDF text", goerr.V("path", path))
	}

	return string(text), nil
}
