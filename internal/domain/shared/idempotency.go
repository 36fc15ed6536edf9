package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which side effects already ran, keyed by a
// caller-chosen string such as "payment-succeeded:<order code>".
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when the key is
	// already claimed; exactly one of several concurrent callers gets true.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release drops a claim so the side effect can run again.
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig controls deduplication of event side effects.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig remembers keys for a day, which outlasts the
// gateways' IPN retry windows.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
