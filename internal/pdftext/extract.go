// Package pdftext extracts page-ordered text from PDF manuals.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bull/manual-copilot/internal/chunker"
)

// ExtractPages returns every page of the PDF at path with its extracted
// text, trimmed, in document order with 1-based numbering. A page that
// yields no text (scanned, image-only, or unparseable) is returned with
// empty text rather than dropped, so page counts stay accurate.
func ExtractPages(path string) ([]chunker.Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]chunker.Page, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			fonts := make(map[string]*pdf.Font)
			if extracted, err := page.GetPlainText(fonts); err == nil {
				text = extracted
			}
			// An extraction error on one page is not fatal; the page
			// simply contributes no chunks.
		}
		pages = append(pages, chunker.Page{Number: i, Text: strings.TrimSpace(text)})
	}
	return pages, nil
}
