package entity

import "time"

// UserSetting carries per-owner preferences. EmbeddingProvider is read before
// every embed operation and downgraded to the local provider by the
// regeneration failover path.
type UserSetting struct {
	Id                int64
	UserId            UserID
	EmbeddingProvider string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
