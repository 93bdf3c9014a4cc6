package model

import (
	"time"

	"gorm.io/gorm"
)

type Note struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	Title     string `gorm:"type:varchar(255);not null"`
	Content   string `gorm:"type:text"`
	Summary   string `gorm:"type:text"`
	UserId    int64  `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
