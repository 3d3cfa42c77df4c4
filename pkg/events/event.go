package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeAnswerGenerated = "assistant.answered"
	TypeDocumentIndexed = "document.indexed"
)

// Event defines the contract for all system events.
type Event interface {
	// EventID is unique per occurrence and doubles as the de-duplication key.
	EventID() string

	// EventType returns the subject suffix for this event (e.g., "assistant.answered").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// NewAnswerGenerated is an audit record of a routed answer. The answer text
// itself is not included.
func NewAnswerGenerated(sessionID, phase string, collections []string, patientID, source string) BaseEvent {
	return newEvent(TypeAnswerGenerated, map[string]interface{}{
		"session_id":  sessionID,
		"phase":       phase,
		"collections": collections,
		"patient_id":  patientID,
		"source":      source,
	})
}

func NewDocumentIndexed(documentID, collection string) BaseEvent {
	return newEvent(TypeDocumentIndexed, map[string]interface{}{
		"document_id": documentID,
		"collection":  collection,
	})
}
