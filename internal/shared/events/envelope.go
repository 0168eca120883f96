package events

import (
	"encoding/json"
	"time"
)

// Envelope is the shared event shape crossing the bus boundary.
// Data stays raw so each consumer decodes only the payload shape it owns.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at_utc"`
	Data       json.RawMessage `json:"data"`
}

// Topic constants follow the domain.action convention.
const (
	TopicUserCreated  = "user.created"
	TopicUserUpdated  = "user.updated"
	TopicUserDeleted  = "user.deleted"
	TopicOrderCreated = "order.created"
)
