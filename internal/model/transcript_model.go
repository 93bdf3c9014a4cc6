package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Transcript struct {
	Id              int64  `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"type:varchar(255);not null"`
	Content         string `gorm:"type:text"`
	Summary         string `gorm:"type:text"`
	Segments        datatypes.JSON
	DurationSeconds float64
	UserId          int64 `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Transcript) TableName() string {
	return "transcripts"
}
