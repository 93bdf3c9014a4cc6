package contract

import (
	"context"

	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/repository/specification"
)

type TranscriptRepository interface {
	Create(ctx context.Context, transcript *entity.Transcript) error
	Update(ctx context.Context, transcript *entity.Transcript) error
	Delete(ctx context.Context, id entity.ItemID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transcript, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
