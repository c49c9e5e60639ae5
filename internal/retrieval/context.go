package retrieval

import (
	"fmt"
	"strings"

	"github.com/bull/manual-copilot/internal/index"
)

// blockSeparator joins context blocks in the assembled prompt context.
const blockSeparator = "\n\n---\n\n"

// noContextPlaceholder stands in for an empty retrieval set so the
// prompt never carries an empty context section.
const noContextPlaceholder = "No relevant manual content found."

// sourceSnippetLen bounds chunk text handed back to callers as a
// citation snippet.
const sourceSnippetLen = 300

// BuildContext renders retrieved records as labeled blocks for the
// system prompt.
func BuildContext(records []index.ChunkRecord) string {
	if len(records) == 0 {
		return noContextPlaceholder
	}
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = fmt.Sprintf("[Unit %s | %s | Page %d]\n%s", r.UnitNumber, r.Filename, r.Page, r.Text)
	}
	return strings.Join(blocks, blockSeparator)
}

// Sources returns citation copies of the records with text truncated
// to a snippet.
func Sources(records []index.ChunkRecord) []index.ChunkRecord {
	sources := make([]index.ChunkRecord, len(records))
	for i, r := range records {
		r.Text = textPrefix(r.Text, sourceSnippetLen)
		sources[i] = r
	}
	return sources
}
