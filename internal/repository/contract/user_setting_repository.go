package contract

import (
	"context"

	"knowledgebase-be/internal/entity"
)

type UserSettingRepository interface {
	// GetEmbeddingProvider returns the owner's configured provider kind, or
	// "" when no settings row exists; callers apply the configured default.
	GetEmbeddingProvider(ctx context.Context, userId entity.UserID) (string, error)
	// SetEmbeddingProvider upserts the owner's provider preference. The
	// regeneration failover uses this to downgrade remote to local.
	SetEmbeddingProvider(ctx context.Context, userId entity.UserID, provider string) error
}
