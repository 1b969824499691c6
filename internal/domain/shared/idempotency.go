package shared

import (
	"context"
	"time"
)

// IdempotencyStore records which delivery keys have already been handled.
// Payment submissions carry a client-supplied key; replaying the same key
// within the TTL window is a no-op.
type IdempotencyStore interface {
	// MarkProcessed claims a key for the given TTL. It returns true when
	// the key was newly claimed and false when it was already taken.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a key has an unexpired claim.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// IdempotencyConfig controls duplicate-delivery suppression.
type IdempotencyConfig struct {
	// TTL is how long a claimed key stays claimed. After it elapses the
	// same key may be processed again.
	TTL time.Duration

	// Enabled turns the check off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig claims keys for 24 hours.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
