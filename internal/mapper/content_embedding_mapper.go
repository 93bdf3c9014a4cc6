package mapper

import (
	"time"

	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ContentEmbeddingMapper struct{}

func NewContentEmbeddingMapper() *ContentEmbeddingMapper {
	return &ContentEmbeddingMapper{}
}

func (m *ContentEmbeddingMapper) ToEntity(e *model.ContentEmbedding) *entity.ContentEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContentEmbedding{
		Id:             e.Id,
		ItemId:         entity.ItemID(e.ItemId),
		ItemType:       entity.ItemType(e.ItemType),
		UserId:         entity.UserID(e.UserId),
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ContentEmbeddingMapper) ToModel(e *entity.ContentEmbedding) *model.ContentEmbedding {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ContentEmbedding{
		Id:             e.Id,
		ItemId:         e.ItemId.Int64(),
		ItemType:       e.ItemType.String(),
		UserId:         e.UserId.Int64(),
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}
