package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
)

type testEvent struct {
	shared.EventHeader
	OrderCode string `json:"order_code"`
}

func newTestEvent(eventType, orderCode string) *testEvent {
	return &testEvent{
		EventHeader: shared.NewEventHeader(eventType, payment.AggregateTypePayment, uuid.New()),
		OrderCode:   orderCode,
	}
}

// recordingHandler collects the events it receives
type recordingHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler(payment.EventTypePaymentSucceeded)
	bus.Subscribe(handler)

	event := newTestEvent(payment.EventTypePaymentSucceeded, "JOB1")
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Equal(t, 1, handler.count())
	assert.Equal(t, event, handler.handled[0])
}

func TestInMemoryEventBus_Publish_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	succeeded := newRecordingHandler()
	failed := newRecordingHandler()
	all := newRecordingHandler()
	bus.Subscribe(succeeded, payment.EventTypePaymentSucceeded)
	bus.Subscribe(failed, payment.EventTypePaymentFailed)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newTestEvent(payment.EventTypePaymentSucceeded, "JOB1"),
		newTestEvent(payment.EventTypePaymentFailed, "JOB2"),
		newTestEvent(payment.EventTypePaymentFailed, "JOB3"),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, succeeded.count())
	assert.Equal(t, 2, failed.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_Publish_HandlerErrorDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	broken := newRecordingHandler()
	broken.err = errors.New("smtp down")
	healthy := newRecordingHandler()
	bus.Subscribe(broken, payment.EventTypePaymentSucceeded)
	bus.Subscribe(healthy, payment.EventTypePaymentSucceeded)

	err := bus.Publish(context.Background(), newTestEvent(payment.EventTypePaymentSucceeded, "JOB1"))

	assert.ErrorContains(t, err, "smtp down")
	assert.Equal(t, 1, broken.count())
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Publish_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	panicking := newRecordingHandler()
	panicking.panicWith = "boom"
	after := newRecordingHandler()
	bus.Subscribe(panicking, payment.EventTypePaymentSucceeded)
	bus.Subscribe(after, payment.EventTypePaymentSucceeded)

	var err error
	require.NotPanics(t, func() {
		err = bus.Publish(context.Background(), newTestEvent(payment.EventTypePaymentSucceeded, "JOB1"))
	})
	assert.ErrorContains(t, err, "handler panicked on PaymentSucceeded: boom")
	assert.Equal(t, 1, after.count())
	assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler(payment.EventTypePaymentSucceeded)
	bus.Subscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent(payment.EventTypePaymentSucceeded, "JOB1"))

	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent(payment.EventTypePaymentSucceeded, "JOB2"))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}
