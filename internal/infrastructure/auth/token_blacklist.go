package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/cache"
)

// revokedKeyPrefix keeps revoked JTIs apart from callback idempotency keys
// when both live in the same store.
const revokedKeyPrefix = "revoked-jti:"

// TokenBlacklist revokes access tokens before they expire (logout)
type TokenBlacklist interface {
	// AddToBlacklist revokes a token by its JTI for ttl, normally the token's remaining lifetime
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsBlacklisted checks if a token's JTI was revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// StoreTokenBlacklist records revocations in an IdempotencyStore. A revoked
// JTI is a key claimed for the rest of the token's lifetime, so Redis and
// the in-memory store both work and expiry comes from the store's TTL.
type StoreTokenBlacklist struct {
	store shared.IdempotencyStore
}

func NewTokenBlacklist(store shared.IdempotencyStore) *StoreTokenBlacklist {
	return &StoreTokenBlacklist{store: store}
}

// NewInMemoryTokenBlacklist is the single-instance blacklist used when Redis is disabled
func NewInMemoryTokenBlacklist() *StoreTokenBlacklist {
	return NewTokenBlacklist(cache.NewInMemoryIdempotencyStore())
}

// AddToBlacklist is a no-op for tokens that already expired. Revoking the
// same JTI twice keeps the first expiry.
func (b *StoreTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if jti == "" {
		return fmt.Errorf("token has no jti")
	}
	if _, err := b.store.MarkProcessed(ctx, revokedKeyPrefix+jti, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (b *StoreTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	revoked, err := b.store.IsProcessed(ctx, revokedKeyPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}

var _ TokenBlacklist = (*StoreTokenBlacklist)(nil)
