package events

import (
	"encoding/json"
	"time"
)

const (
	TypeResumeCreated        = "resume.created"
	TypeApplicationOptimized = "application.optimized"
	TypeBillingWebhook       = "billing.webhook"

	currentVersion = 1
)

// Event is the payload sent to downstream consumers. The routing key is Type.
type Event struct {
	Type       string         `json:"type"`
	UserID     string         `json:"userId,omitempty"`
	ResourceID string         `json:"resourceId,omitempty"`
	RequestID  string         `json:"requestId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Version    int            `json:"version"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with the current time and schema version.
func New(eventType, userID, resourceID string, data map[string]any) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
		Version:    currentVersion,
		Data:       data,
	}
}

// Encode returns the JSON representation of an event.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a JSON payload into an Event.
func Decode(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
