package implementation

import (
	"context"

	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/mapper"
	"knowledgebase-be/internal/model"
	"knowledgebase-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentEmbeddingMapper
}

func NewContentEmbeddingRepository(db *gorm.DB) contract.ContentEmbeddingRepository {
	return &ContentEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentEmbeddingMapper(),
	}
}

// Upsert relies on the unique index over (item_id, item_type). The ON
// CONFLICT clause keeps concurrent writers of the same key last-writer-wins
// without a read-check-write race.
func (r *ContentEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.ContentEmbedding) error {
	m := r.mapper.ToModel(embedding)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "item_id"}, {Name: "item_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "embedding_value", "updated_at",
			}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentEmbeddingRepositoryImpl) DeleteByItem(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType) error {
	return r.db.WithContext(ctx).
		Where("item_id = ? AND item_type = ?", itemId.Int64(), itemType.String()).
		Delete(&model.ContentEmbedding{}).Error
}

func (r *ContentEmbeddingRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId entity.UserID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userId.Int64()).
		Delete(&model.ContentEmbedding{}).Error
}

// SearchNearest scans with pgvector cosine distance: embedding_value <=> vector.
// Rows are scoped to the owner before ordering so another user's content can
// never appear, regardless of similarity.
func (r *ContentEmbeddingRepositoryImpl) SearchNearest(ctx context.Context, vector []float32, userId entity.UserID, limit int) ([]*contract.NearestEmbedding, error) {
	if limit <= 0 {
		limit = 10
	}

	type row struct {
		ItemId   int64
		ItemType string
		Distance float64
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("content_embeddings").
		Select("item_id, item_type, embedding_value <=> ? AS distance", queryVector).
		Where("user_id = ?", userId.Int64()).
		Order("distance ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.NearestEmbedding, len(rows))
	for i, re := range rows {
		results[i] = &contract.NearestEmbedding{
			ItemId:   entity.ItemID(re.ItemId),
			ItemType: entity.ItemType(re.ItemType),
			Distance: re.Distance,
		}
	}
	return results, nil
}
