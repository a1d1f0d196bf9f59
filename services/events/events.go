package events

import (
	"context"
	"sync"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

// Lifecycle event types. They double as AMQP routing keys.
const (
	BookingCreated      = "booking.created"
	BookingAccepted     = "booking.accepted"
	BookingRejected     = "booking.rejected"
	BookingCompleted    = "booking.completed"
	BookingCancelled    = "booking.cancelled"
	BookingExpired      = "booking.expired"
	NegotiationProposed = "booking.negotiation.proposed"
	NegotiationResolved = "booking.negotiation.resolved"
)

// Event is a booking lifecycle fact published after the write committed.
type Event struct {
	Type       string                 `json:"type"`
	BookingID  string                 `json:"bookingId"`
	Status     models.BookingStatus   `json:"status"`
	ActorID    string                 `json:"actorId,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Publisher emits lifecycle events. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
