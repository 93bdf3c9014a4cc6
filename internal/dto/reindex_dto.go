package dto

import (
	"time"

	"knowledgebase-be/internal/entity"

	"github.com/google/uuid"
)

type StartReindexResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	RunId   uuid.UUID `json:"run_id,omitempty"`
}

type ReindexItemError struct {
	ItemId   entity.ItemID   `json:"item_id"`
	ItemType entity.ItemType `json:"item_type"`
	Error    string          `json:"error"`
}

// ReindexStatusResponse is a point-in-time snapshot of the single
// regeneration slot. Errors carries at most the first 10 entries;
// ErrorCount is the full count.
type ReindexStatusResponse struct {
	InProgress     bool               `json:"in_progress"`
	RunId          uuid.UUID          `json:"run_id,omitempty"`
	Total          int                `json:"total"`
	Completed      int                `json:"completed"`
	StartTime      *time.Time         `json:"start_time,omitempty"`
	Errors         []ReindexItemError `json:"errors"`
	ErrorCount     int                `json:"error_count"`
	FatalError     string             `json:"fatal_error,omitempty"`
	HasAPIKeyError bool               `json:"has_api_key_error"`
}
