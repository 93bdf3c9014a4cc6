package mapper

import (
	"time"

	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TranscriptMapper struct{}

func NewTranscriptMapper() *TranscriptMapper {
	return &TranscriptMapper{}
}

func (m *TranscriptMapper) ToEntity(e *model.Transcript) *entity.Transcript {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Transcript{
		Id:              entity.ItemID(e.Id),
		Title:           e.Title,
		Content:         e.Content,
		Summary:         e.Summary,
		Segments:        []byte(e.Segments),
		DurationSeconds: e.DurationSeconds,
		UserId:          entity.UserID(e.UserId),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       e.DeletedAt.Valid,
	}
}

func (m *TranscriptMapper) ToModel(e *entity.Transcript) *model.Transcript {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Transcript{
		Id:              e.Id.Int64(),
		Title:           e.Title,
		Content:         e.Content,
		Summary:         e.Summary,
		Segments:        datatypes.JSON(e.Segments),
		DurationSeconds: e.DurationSeconds,
		UserId:          e.UserId.Int64(),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

func (m *TranscriptMapper) ToEntities(transcripts []*model.Transcript) []*entity.Transcript {
	entities := make([]*entity.Transcript, len(transcripts))
	for i, t := range transcripts {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
