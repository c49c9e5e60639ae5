//go:build integration

package index

import (
	"context"
	"hash/fnv"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/manual-copilot/internal/chunker"
)

// hashEmbedder is a deterministic local stand-in for the OpenAI
// embedder so these tests only need a running Qdrant.
type hashEmbedder struct{ dim int }

func (h hashEmbedder) Dimension() int { return h.dim }

func (h hashEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, h.dim)
		hash := fnv.New32a()
		hash.Write([]byte(text))
		seed := hash.Sum32()
		for j := range vec {
			seed = seed*1664525 + 1013904223
			vec[j] = float32(seed%1000) / 1000
		}
		out[i] = vec
	}
	return out, nil
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		require.NoError(t, err)
		port = p
	}
	ix, err := New(host, port, hashEmbedder{dim: 8})
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func pageChunks(page int, texts ...string) []chunker.Chunk {
	chunks := make([]chunker.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = chunker.Chunk{Text: text, Page: page, Index: i}
	}
	return chunks
}

func TestIndexManual_ReplacesPriorIndex(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	defer ix.DeleteManualIndex(ctx, "it-102")

	err := ix.IndexManual(ctx, "it-102", "old.pdf", pageChunks(1, "old hydraulic spec", "old torque table"))
	require.NoError(t, err)

	err = ix.IndexManual(ctx, "it-102", "new.pdf", pageChunks(1, "new hydraulic spec"))
	require.NoError(t, err)

	records, err := ix.QueryUnit(ctx, "it-102", "hydraulic spec", 10)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, "new.pdf", r.Filename, "stale chunks from the replaced upload must not come back")
	}
}

func TestQueryUnit_MissingUnit(t *testing.T) {
	ix := newTestIndex(t)

	records, err := ix.QueryUnit(context.Background(), "it-never-indexed", "anything", 5)
	require.NoError(t, err, "a missing unit is a valid no-knowledge state")
	assert.Empty(t, records)
}

func TestDeleteManualIndex_Idempotent(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexManual(ctx, "it-del", "m.pdf", pageChunks(1, "some text")))
	require.NoError(t, ix.DeleteManualIndex(ctx, "it-del"))
	require.NoError(t, ix.DeleteManualIndex(ctx, "it-del"), "deleting a nonexistent collection is a no-op")
}

func TestQueryAll_SkipsEmptyCollectionsAndCaps(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()
	for _, unit := range []string{"it-a", "it-b", "it-c"} {
		defer ix.DeleteManualIndex(ctx, unit)
	}

	require.NoError(t, ix.IndexManual(ctx, "it-a", "a.pdf",
		pageChunks(1, "belt routing", "belt tension", "belt part number")))
	require.NoError(t, ix.IndexManual(ctx, "it-b", "b.pdf", nil)) // indexed but empty
	require.NoError(t, ix.IndexManual(ctx, "it-c", "c.pdf",
		pageChunks(2, "filter spec", "filter interval", "oil filter", "air filter", "fuel filter")))

	records, err := ix.QueryAll(ctx, "filter belt", 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(records), 5)
	for i := 1; i < len(records); i++ {
		assert.LessOrEqual(t, records[i-1].Distance, records[i].Distance, "results must be globally sorted by distance")
	}
	for _, r := range records {
		assert.NotEqual(t, "it-b", r.UnitNumber, "empty collections contribute nothing")
	}
}
