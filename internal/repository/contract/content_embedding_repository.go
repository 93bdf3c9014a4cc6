package contract

import (
	"context"

	"knowledgebase-be/internal/entity"
)

// NearestEmbedding is one row of a nearest-neighbor scan: the item key plus
// its cosine distance to the query vector (ascending = more similar).
type NearestEmbedding struct {
	ItemId   entity.ItemID
	ItemType entity.ItemType
	Distance float64
}

type ContentEmbeddingRepository interface {
	// Upsert replaces-or-inserts the single live row for (ItemId, ItemType)
	// using the database's native conflict resolution, not read-check-write.
	Upsert(ctx context.Context, embedding *entity.ContentEmbedding) error
	// DeleteByItem is best-effort; deleting a missing row is not an error.
	DeleteByItem(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType) error
	DeleteAllByUserId(ctx context.Context, userId entity.UserID) error
	// SearchNearest returns the limit closest owned rows by cosine distance,
	// ascending.
	SearchNearest(ctx context.Context, vector []float32, userId entity.UserID, limit int) ([]*NearestEmbedding, error)
}
