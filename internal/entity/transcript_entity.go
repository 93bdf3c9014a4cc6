package entity

import "time"

// Transcript is the persisted result of the external speech-to-text process.
// Segments holds the raw segment payload as produced by the STT server.
type Transcript struct {
	Id              ItemID
	Title           string
	Content         string
	Summary         string
	Segments        []byte
	DurationSeconds float64
	UserId          UserID
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}
