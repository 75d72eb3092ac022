package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadFile extracts plain text from a local file and returns it as a
// Document. Plain text (.txt, .md) is read as-is; PDF text is extracted
// page by page. Anything else is unsupported.
func LoadFile(path string) (Document, error) {
	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("read %s: %w", name, err)
		}
		return Document{Name: name, Text: string(data)}, nil

	case ".pdf":
		text, err := extractPDF(path)
		if err != nil {
			return Document{}, fmt.Errorf("extract %s: %w", name, err)
		}
		return Document{Name: name, Text: text}, nil

	default:
		return Document{}, fmt.Errorf("unsupported file format %q (want .txt, .md or .pdf)", filepath.Ext(path))
	}
}

// extractPDF concatenates the plain text of every page.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
