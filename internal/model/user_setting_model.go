package model

import "time"

type UserSetting struct {
	Id                int64  `gorm:"primaryKey;autoIncrement"`
	UserId            int64  `gorm:"not null;uniqueIndex"`
	EmbeddingProvider string `gorm:"type:varchar(32);not null;default:local"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UserSetting) TableName() string {
	return "user_settings"
}
