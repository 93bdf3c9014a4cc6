package dto

import (
	"encoding/json"
	"time"

	"knowledgebase-be/internal/entity"
)

type CreateTranscriptRequest struct {
	Title           string          `json:"title" validate:"required"`
	Content         string          `json:"content"`
	Summary         string          `json:"summary"`
	Segments        json.RawMessage `json:"segments"`
	DurationSeconds float64         `json:"duration_seconds"`
}

type CreateTranscriptResponse struct {
	Id entity.ItemID `json:"id"`
}

type ShowTranscriptResponse struct {
	Id              entity.ItemID   `json:"id"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Summary         string          `json:"summary,omitempty"`
	Segments        json.RawMessage `json:"segments,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at"`
}

type UpdateTranscriptRequest struct {
	Id      entity.ItemID
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

type UpdateTranscriptResponse struct {
	Id entity.ItemID `json:"id"`
}
