package entity

import "time"

// EmbeddingDimensions is the fixed vector size for all providers
// (all-minilm locally, text-embedding-004 with outputDimensionality remotely).
const EmbeddingDimensions = 384

// ContentEmbedding is one row of the vector index. At most one live row
// exists per (ItemId, ItemType); writers rely on the store's native upsert.
type ContentEmbedding struct {
	Id             int64
	ItemId         ItemID
	ItemType       ItemType
	UserId         UserID
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
