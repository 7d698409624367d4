package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by this service
const (
	EventQuestionsGenerated = "qgen.questions_generated"
	EventActivityDeleted    = "qgen.activity_deleted"
	EventCreditsRefunded    = "qgen.credits_refunded"
)

const eventSource = "qgen-service"

// Event is the envelope every published message shares.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

func newEvent(eventType string, data any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// QuestionsGeneratedEvent is emitted after a generation run commits.
type QuestionsGeneratedEvent struct {
	ActivityID     uuid.UUID   `json:"activity_id"`
	OwnerID        uuid.UUID   `json:"owner_id"`
	RequestedCount int         `json:"requested_count"`
	AcceptedCount  int         `json:"accepted_count"`
	QuestionIDs    []uuid.UUID `json:"question_ids"`
}

func NewQuestionsGeneratedEvent(data QuestionsGeneratedEvent) *Event {
	return newEvent(EventQuestionsGenerated, data)
}

// ActivityDeletedEvent is emitted when an activity and its questions
// are removed, so downstream consumers can drop derived data.
type ActivityDeletedEvent struct {
	ActivityID uuid.UUID `json:"activity_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

func NewActivityDeletedEvent(data ActivityDeletedEvent) *Event {
	return newEvent(EventActivityDeleted, data)
}

// CreditsRefundedEvent is emitted when a generation run returns part or
// all of its reservation to the owner's ledger.
type CreditsRefundedEvent struct {
	ActivityID uuid.UUID `json:"activity_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Amount     int       `json:"amount"`
}

func NewCreditsRefundedEvent(data CreditsRefundedEvent) *Event {
	return newEvent(EventCreditsRefunded, data)
}
