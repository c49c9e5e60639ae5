// Package chunker splits extracted manual page text into overlapping
// fixed-size spans suitable for embedding and retrieval.
package chunker

import "strings"

const (
	// ChunkSize is the window width in characters.
	ChunkSize = 800

	// ChunkOverlap is how many characters consecutive windows share.
	// Content straddling a window boundary appears intact in at least
	// one chunk.
	ChunkOverlap = 150
)

// Page holds the extracted text of a single manual page. Numbering is
// 1-based and follows document order.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded span of a page's text, the atomic unit of indexing.
type Chunk struct {
	Text  string // window content, untrimmed
	Page  int    // source page number (1-based)
	Index int    // window position within the page (0-based)
}

// ChunkPage slides a ChunkSize-wide window over text, advancing by
// ChunkSize-ChunkOverlap characters per step. Blank windows are skipped
// but still consume an index, so Index reflects the window position, not
// the emission count. Text shorter than ChunkSize yields a single chunk;
// empty text yields none.
func ChunkPage(text string, page int) []Chunk {
	runes := []rune(text)
	step := ChunkSize - ChunkOverlap

	var chunks []Chunk
	idx := 0
	for start := 0; start < len(runes); start += step {
		end := start + ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, Chunk{Text: window, Page: page, Index: idx})
		}
		idx++
	}
	return chunks
}

// ExtractChunks chunks every page in document order and returns the
// flattened list together with the total page count. A document with no
// extractable pages yields an empty list and a zero count.
func ExtractChunks(pages []Page) ([]Chunk, int) {
	var all []Chunk
	for _, p := range pages {
		all = append(all, ChunkPage(p.Text, p.Number)...)
	}
	return all, len(pages)
}
