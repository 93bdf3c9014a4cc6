package dto

import (
	"time"

	"knowledgebase-be/internal/entity"
)

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

// SearchResultResponse is one hydrated semantic-search hit.
// Relevance is 1 - cosine distance, roughly [0,1], higher = closer.
type SearchResultResponse struct {
	Id        entity.ItemID   `json:"id"`
	Type      entity.ItemType `json:"type"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Summary   string          `json:"summary,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Relevance float64         `json:"relevance"`
}

type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
	Count   int                    `json:"count"`
}
