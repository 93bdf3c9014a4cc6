package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ContentEmbedding has no soft delete: its lifecycle is fully derived from the
// source item's lifecycle, so rows are hard-deleted or replaced in place.
type ContentEmbedding struct {
	Id             int64           `gorm:"primaryKey;autoIncrement"`
	ItemId         int64           `gorm:"not null;uniqueIndex:idx_content_embeddings_item"`
	ItemType       string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_content_embeddings_item"`
	UserId         int64           `gorm:"not null;index"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(384)"` // all-minilm / text-embedding-004 (truncated) use 384 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (ContentEmbedding) TableName() string {
	return "content_embeddings"
}
