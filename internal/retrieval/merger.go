// Package retrieval decides which manual chunks reach the answer
// generation step. Unit-scoped results are trusted first; cross-manual
// search is a recall safety net triggered by parts/spec vocabulary or
// by total retrieval failure.
package retrieval

import (
	"context"
	"log/slog"

	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/unitref"
)

const (
	// perQueryResults is how many neighbors each index query asks for.
	perQueryResults = 5

	// maxContextChunks caps the assembled context set.
	maxContextChunks = 10

	// dedupPrefixLen is how much chunk text participates in the
	// duplicate key. Overlapping chunks from adjacent windows differ
	// within the first 50 characters.
	dedupPrefixLen = 50
)

// Searcher is the slice of the vector index adapter the merger needs.
type Searcher interface {
	QueryUnit(ctx context.Context, unitNumber, query string, k int) ([]index.ChunkRecord, error)
	QueryAll(ctx context.Context, query string, k int) ([]index.ChunkRecord, error)
}

// Merger orchestrates unit-scoped and cross-manual queries and merges
// them into a bounded, deduplicated context set.
type Merger struct {
	index  Searcher
	logger *slog.Logger
}

// NewMerger creates a Merger over the given index.
func NewMerger(ix Searcher, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		index:  ix,
		logger: logger,
	}
}

type dedupKey struct {
	unit   string
	page   int
	prefix string
}

// Retrieve assembles the context set for one chat message. It returns
// the retained records in merge order and whether cross-manual search
// was triggered by the message's vocabulary.
//
// Unit-specific results always precede cross-manual results. Duplicates
// (same unit, page and text prefix) are silently skipped, preserving
// first-seen order. The result is capped at maxContextChunks.
func (m *Merger) Retrieve(ctx context.Context, message string) ([]index.ChunkRecord, bool, error) {
	units := unitref.Detect(message)

	var records []index.ChunkRecord
	seen := make(map[dedupKey]struct{})
	add := func(results []index.ChunkRecord) {
		for _, r := range results {
			key := dedupKey{unit: r.UnitNumber, page: r.Page, prefix: textPrefix(r.Text, dedupPrefixLen)}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, r)
		}
	}

	for _, unit := range units {
		results, err := m.index.QueryUnit(ctx, unit, message, perQueryResults)
		if err != nil {
			return nil, false, err
		}
		add(results)
	}

	crossRef := unitref.MentionsCrossRef(message)
	if crossRef || len(records) == 0 {
		results, err := m.index.QueryAll(ctx, message, perQueryResults)
		if err != nil {
			return nil, false, err
		}
		add(results)
	}

	if len(records) > maxContextChunks {
		records = records[:maxContextChunks]
	}

	m.logger.Debug("retrieved context",
		"units", units,
		"cross_ref", crossRef,
		"chunks", len(records),
	)
	return records, crossRef, nil
}

// textPrefix returns the first n characters of s.
func textPrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
