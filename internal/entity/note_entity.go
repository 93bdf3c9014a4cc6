package entity

import "time"

type Note struct {
	Id        ItemID
	Title     string
	Content   string
	Summary   string
	UserId    UserID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
