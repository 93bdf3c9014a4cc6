package implementation

import (
	"context"
	"errors"

	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/model"
	"knowledgebase-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserSettingRepositoryImpl struct {
	db *gorm.DB
}

func NewUserSettingRepository(db *gorm.DB) contract.UserSettingRepository {
	return &UserSettingRepositoryImpl{db: db}
}

func (r *UserSettingRepositoryImpl) GetEmbeddingProvider(ctx context.Context, userId entity.UserID) (string, error) {
	var m model.UserSetting
	err := r.db.WithContext(ctx).Where("user_id = ?", userId.Int64()).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No settings row yet; the caller applies the configured default.
			return "", nil
		}
		return "", err
	}
	return m.EmbeddingProvider, nil
}

func (r *UserSettingRepositoryImpl) SetEmbeddingProvider(ctx context.Context, userId entity.UserID, provider string) error {
	m := model.UserSetting{
		UserId:            userId.Int64(),
		EmbeddingProvider: provider,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding_provider", "updated_at"}),
		}).
		Create(&m).Error
}
