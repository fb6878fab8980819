// internal/events/events.go
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeScoreComputed    = "score.computed"
	TypeHealthCalculated = "health.calculated"
	TypeTasksTriggered   = "tasks.triggered"
)

// Event is the envelope published for downstream consumers.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	StartupID  string      `json:"startup_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEvent(eventType, startupID string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		StartupID:  startupID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no topic is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
