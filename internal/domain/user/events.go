package user

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated EventType = "user.created"
	EventUpdated EventType = "user.updated"
	EventDeleted EventType = "user.deleted"
)

// Event describes a committed profile mutation.
type Event struct {
	ID         uuid.UUID `json:"event_id"`
	Type       EventType `json:"event_type"`
	UserID     int64     `json:"user_id"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, userID int64, version int) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		UserID:     userID,
		Version:    version,
		OccurredAt: time.Now().UTC(),
	}
}

func (t EventType) Valid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}
