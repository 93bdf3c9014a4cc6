package dto

import (
	"time"

	"knowledgebase-be/internal/entity"
)

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

type CreateNoteResponse struct {
	Id entity.ItemID `json:"id"`
}

type ShowNoteResponse struct {
	Id        entity.ItemID `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Summary   string        `json:"summary,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at"`
}

type UpdateNoteRequest struct {
	Id      entity.ItemID
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

type UpdateNoteResponse struct {
	Id entity.ItemID `json:"id"`
}

type ListNotesResponse struct {
	Notes []*ShowNoteResponse `json:"notes"`
}
