package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/logger"
)

// KeyFunc derives the idempotency key for an event
type KeyFunc func(event shared.DomainEvent) string

// EventIDKey keys events by their event ID
func EventIDKey(event shared.DomainEvent) string {
	return event.EventID().String()
}

// HandlerStats counts what an IdempotentHandler did with the events it saw.
type HandlerStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler runs the wrapped handler at most once per key.
//
// The key is claimed before the handler runs. A failed run releases the claim
// so the next delivery of the same outcome can retry; a store outage lets the
// event through rather than drop the side effect.
type IdempotentHandler struct {
	next   shared.EventHandler
	store  shared.IdempotencyStore
	config shared.IdempotencyConfig
	key    KeyFunc
	logger *zap.Logger

	processed, duplicate, failed atomic.Int64
}

type IdempotentHandlerOption func(*IdempotentHandler)

func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.config = config }
}

// WithKeyFunc replaces the default event ID key. A nil fn is ignored.
func WithKeyFunc(fn KeyFunc) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		if fn != nil {
			h.key = fn
		}
	}
}

func NewIdempotentHandler(
	next shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		next:   next,
		store:  store,
		config: shared.DefaultIdempotencyConfig(),
		key:    EventIDKey,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.next.EventTypes()
}

func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.run(ctx, event)
	}

	key := h.key(event)
	log := logger.Enrich(ctx, h.logger).With(
		zap.String("idempotency_key", key),
		zap.String("event_type", event.EventType()),
	)

	claimed, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		log.Warn("Idempotency store unavailable, handling event anyway", zap.Error(err))
	case !claimed:
		h.duplicate.Add(1)
		log.Debug("Duplicate event skipped")
		return nil
	}

	if err := h.run(ctx, event); err != nil {
		log.Error("Event handler failed", zap.Error(err))
		if claimed {
			if relErr := h.store.Release(ctx, key); relErr != nil {
				log.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		}
		return err
	}
	return nil
}

func (h *IdempotentHandler) run(ctx context.Context, event shared.DomainEvent) error {
	if err := h.next.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns a snapshot of the handler's counters.
func (h *IdempotentHandler) Stats() HandlerStats {
	return HandlerStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
