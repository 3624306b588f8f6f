package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one consumed profile event, stored append-only.
type Entry struct {
	ID         int64     `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	UserID     int64     `json:"user_id"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at"`
}

type Repository interface {
	// Append stores e unless an entry with the same EventID exists.
	// It reports whether a new row was written.
	Append(ctx context.Context, e *Entry) (bool, error)
}
