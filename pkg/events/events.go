package events

import (
	"strings"
	"time"
)

// Type identifies a domain event. The constants below are the only values
// the services publish; consumers can subscribe by subject instead of
// filtering on a free-form string.
type Type string

const (
	NoteCreated       Type = "NOTE_CREATED"
	NoteDeleted       Type = "NOTE_DELETED"
	TranscriptCreated Type = "TRANSCRIPT_CREATED"
	TranscriptDeleted Type = "TRANSCRIPT_DELETED"
	ReindexStarted    Type = "REINDEX_STARTED"
	ReindexFinished   Type = "REINDEX_FINISHED"
)

// Subject maps the event type onto the knowledge.> subject hierarchy, e.g.
// NOTE_CREATED becomes knowledge.note.created.
func (t Type) Subject() string {
	return "knowledge." + strings.ReplaceAll(strings.ToLower(string(t)), "_", ".")
}

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the typed code for this event.
	EventType() Type

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain struct implementation used everywhere.
type BaseEvent struct {
	Type       Type
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() Type {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
