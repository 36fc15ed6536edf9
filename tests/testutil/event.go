// Package testutil provides helpers shared by the integration tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/shared"
)

// EventRecorder is a shared.EventHandler that keeps every event it is given.
type EventRecorder struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{types: eventTypes}
}

func (r *EventRecorder) EventTypes() []string { return r.types }

// Handle records event and returns the error set by FailWith, if any.
// The event is recorded even when an error is returned.
func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

// Events returns a copy of the recorded events in arrival order.
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

// OfType returns the recorded events with the given type.
func (r *EventRecorder) OfType(eventType string) []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range r.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (r *EventRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// FailWith makes subsequent Handle calls return err.
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.err = nil
}

// WaitForEvents blocks until rec holds at least n events or timeout passes.
func WaitForEvents(t *testing.T, rec *EventRecorder, n int, timeout time.Duration) bool {
	t.Helper()
	return WaitForCondition(t, func() bool { return rec.Count() >= n }, timeout, 10*time.Millisecond)
}

// PaymentLikeEvent stands in for the payment events in handler tests that
// should not depend on the payment domain.
type PaymentLikeEvent struct {
	shared.EventHeader
	OrderCode string
}

// NewTestEvent returns an event of eventType with a random ID and order code.
func NewTestEvent(eventType string) *PaymentLikeEvent {
	return NewTestEventWithID(uuid.New(), eventType)
}

func NewTestEventWithID(eventID uuid.UUID, eventType string) *PaymentLikeEvent {
	header := shared.NewEventHeader(eventType, "Payment", uuid.New())
	header.ID = eventID
	return &PaymentLikeEvent{
		EventHeader: header,
		OrderCode:   "JOB" + eventID.String()[:8],
	}
}
