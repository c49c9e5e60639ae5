package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkPage_ShortText(t *testing.T) {
	text := "Hydraulic system operating pressure: 2800 psi."

	chunks := ChunkPage(text, 3)

	require.Len(t, chunks, 1, "text shorter than ChunkSize should yield one chunk")
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 3, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunkPage_EmptyText(t *testing.T) {
	assert.Empty(t, ChunkPage("", 1))
}

func TestChunkPage_BlankText(t *testing.T) {
	assert.Empty(t, ChunkPage("   \n\t  ", 1))
}

func TestChunkPage_OverlapAndCoverage(t *testing.T) {
	// Build a long page with position-dependent content so overlap is checkable.
	var b strings.Builder
	for b.Len() < 3*ChunkSize {
		b.WriteString("torque the fasteners to specification before refilling the reservoir ")
	}
	text := b.String()

	chunks := ChunkPage(text, 1)
	require.Greater(t, len(chunks), 1)

	step := ChunkSize - ChunkOverlap
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		if i < len(chunks)-1 {
			require.Len(t, []rune(c.Text), ChunkSize)
			// Tail of this window equals head of the next one.
			tail := string([]rune(c.Text)[step:])
			head := string([]rune(chunks[i+1].Text)[:ChunkOverlap])
			assert.Equal(t, tail, head, "chunk %d should overlap its successor by %d chars", i, ChunkOverlap)
		}
	}

	// Union of the windows covers the whole page.
	var covered int
	for i, c := range chunks {
		if i == 0 {
			covered = len([]rune(c.Text))
		} else {
			covered += len([]rune(c.Text)) - ChunkOverlap
		}
	}
	assert.Equal(t, len([]rune(text)), covered)
}

func TestChunkPage_BlankWindowConsumesIndex(t *testing.T) {
	step := ChunkSize - ChunkOverlap

	// First window has content, second window (starting at step) is all
	// whitespace beyond the overlap region... simplest construction: text
	// whose only non-whitespace portion ends before the overlap of window
	// two and three, leaving a fully blank third window.
	text := strings.Repeat("a", ChunkSize) + strings.Repeat(" ", 3*step)

	chunks := ChunkPage(text, 1)
	require.NotEmpty(t, chunks)

	// Indexes must be monotonically increasing window positions even when
	// blank windows were skipped.
	last := -1
	for _, c := range chunks {
		assert.Greater(t, c.Index, last)
		last = c.Index
	}
	// Window 0 contains the 'a' run and is always emitted.
	assert.Equal(t, 0, chunks[0].Index)
	// At least one trailing all-blank window must have been skipped.
	totalWindows := 0
	for start := 0; start < len(text); start += step {
		totalWindows++
	}
	assert.Less(t, len(chunks), totalWindows)
}

func TestExtractChunks(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "cooling system capacity and fill procedure"},
		{Number: 2, Text: ""}, // scanned page, no extractable text
		{Number: 3, Text: "fuel filter replacement interval"},
	}

	chunks, pageCount := ExtractChunks(pages)

	assert.Equal(t, 3, pageCount, "page count includes pages that produced no chunks")
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 3, chunks[1].Page)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[1].Index, "chunk index restarts per page")
}

func TestExtractChunks_NoPages(t *testing.T) {
	chunks, pageCount := ExtractChunks(nil)
	assert.Empty(t, chunks)
	assert.Zero(t, pageCount)
}
