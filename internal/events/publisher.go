package events

import (
	"context"
	"sync"

	"resume-tailor/internal/shared/telemetry"
)

// Publisher sends events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Emit publishes e and logs a failure instead of returning it.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		telemetry.Warn("events.publish_failed", map[string]any{
			"type":        e.Type,
			"resource_id": e.ResourceID,
			"error":       err,
		})
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what has been published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
