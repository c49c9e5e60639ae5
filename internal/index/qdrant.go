// Package index maintains one Qdrant collection per equipment unit and
// answers nearest-neighbor queries against them, singly or in aggregate.
package index

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/bull/manual-copilot/internal/chunker"
)

// Embedder maps texts to vectors. Implemented by embedding.Embedder.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Index is the vector index adapter. Documents and queries are embedded
// through the injected Embedder; similarity search is delegated to Qdrant.
type Index struct {
	client   *qdrant.Client
	embedder Embedder
}

// New connects to Qdrant over gRPC and verifies it is reachable,
// retrying the health check with exponential backoff before giving up.
func New(host string, port int, embedder Embedder) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	ix := &Index{
		client:   client,
		embedder: embedder,
	}

	if err := ix.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return ix, nil
}

func (ix *Index) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return ix.Health(ctx)
	}, b)
}

// Health performs a single health check against Qdrant.
func (ix *Index) Health(ctx context.Context) error {
	result, err := ix.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// Close closes the Qdrant connection.
func (ix *Index) Close() error {
	if ix.client != nil {
		return ix.client.Close()
	}
	return nil
}

// IndexManual replaces the collection for a unit with freshly embedded
// chunks. The previous collection is deleted first (a missing one is
// fine), so stale chunks from an earlier upload can never be returned.
func (ix *Index) IndexManual(ctx context.Context, unitNumber, filename string, chunks []chunker.Chunk) error {
	name := NormalizeUnit(unitNumber).Collection()

	// Idempotent-by-replacement: drop whatever was there before.
	if err := ix.client.DeleteCollection(ctx, name); err != nil {
		if exists, existsErr := ix.collectionExists(ctx, name); existsErr == nil && exists {
			return fmt.Errorf("delete collection %s: %w", name, err)
		}
	}

	err := ix.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(ix.embedder.Dimension()),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := ix.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(name, c.Page, c.Index)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"unit_number": unitNumber,
				"filename":    filename,
				"page":        c.Page,
				"text":        c.Text,
			}),
		}
	}

	for i := 0; i < len(points); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(points))
		if err := ix.upsertWithRetry(ctx, name, points[i:end]); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// pointID derives a stable document id from the chunk's position so
// repeated insertion of identical chunks cannot duplicate documents.
func pointID(collection string, page, chunkIndex int) string {
	key := fmt.Sprintf("%s_p%d_c%d", collection, page, chunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func (ix *Index) upsertWithRetry(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := ix.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// DeleteManualIndex removes a unit's collection. Deleting a unit that
// was never indexed is a no-op.
func (ix *Index) DeleteManualIndex(ctx context.Context, unitNumber string) error {
	name := NormalizeUnit(unitNumber).Collection()
	if err := ix.client.DeleteCollection(ctx, name); err != nil {
		if exists, existsErr := ix.collectionExists(ctx, name); existsErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// QueryUnit returns up to k nearest chunks from one unit's collection,
// ascending by distance. A unit that was never indexed is a valid "no
// knowledge" state and yields an empty result, not an error.
func (ix *Index) QueryUnit(ctx context.Context, unitNumber, query string, k int) ([]ChunkRecord, error) {
	name := NormalizeUnit(unitNumber).Collection()

	exists, err := ix.collectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if !exists {
		return nil, nil
	}

	vector, err := ix.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	return ix.queryCollection(ctx, name, vector, k)
}

// QueryAll queries every non-empty unit collection and merges the
// results, globally sorted ascending by distance and capped at k.
// Collections that fail to answer are skipped, not fatal.
func (ix *Index) QueryAll(ctx context.Context, query string, k int) ([]ChunkRecord, error) {
	names, err := ix.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	vector, err := ix.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var all []ChunkRecord
	for _, name := range names {
		if _, ok := unitFromCollection(name); !ok {
			continue
		}
		info, err := ix.client.GetCollectionInfo(ctx, name)
		if err != nil || info.GetPointsCount() == 0 {
			continue
		}
		records, err := ix.queryCollection(ctx, name, vector, k)
		if err != nil {
			continue
		}
		all = append(all, records...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})
	if len(all) > k {
		all = all[:k]
	}
	return all, nil
}

// ListUnits returns the normalized ids of every indexed unit.
func (ix *Index) ListUnits(ctx context.Context) ([]string, error) {
	names, err := ix.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	var units []string
	for _, name := range names {
		if unit, ok := unitFromCollection(name); ok {
			units = append(units, unit)
		}
	}
	sort.Strings(units)
	return units, nil
}

func (ix *Index) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := ix.embedder.GenerateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return embeddings[0], nil
}

func (ix *Index) queryCollection(ctx context.Context, name string, vector []float32, k int) ([]ChunkRecord, error) {
	results, err := ix.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", name, err)
	}

	records := make([]ChunkRecord, 0, len(results))
	for _, p := range results {
		payload := p.Payload
		records = append(records, ChunkRecord{
			UnitNumber: payload["unit_number"].GetStringValue(),
			Filename:   payload["filename"].GetStringValue(),
			Page:       int(payload["page"].GetIntegerValue()),
			Text:       payload["text"].GetStringValue(),
			// Qdrant reports cosine similarity (higher = closer);
			// callers rank by distance ascending.
			Distance: 1 - float64(p.Score),
		})
	}
	return records, nil
}

func (ix *Index) collectionExists(ctx context.Context, name string) (bool, error) {
	names, err := ix.client.ListCollections(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
