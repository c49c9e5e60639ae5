package index

// ChunkRecord is a single retrieval result. Records are ephemeral,
// rebuilt from the vector store payload on every query.
type ChunkRecord struct {
	UnitNumber string  `json:"unit_number"`
	Filename   string  `json:"filename"`
	Page       int     `json:"page"`
	Text       string  `json:"text"`
	Distance   float64 `json:"distance"` // cosine distance, lower = more similar
}

// collectionPrefix namespaces per-unit collections in Qdrant so that
// cross-manual enumeration can identify them.
const collectionPrefix = "unit_"

// upsertBatchSize caps a single upsert request. Insertion in batches
// does not change the logical result.
const upsertBatchSize = 500
