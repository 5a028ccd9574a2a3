package session

import (
	"context"
	"time"
)

// Store keeps one set of live refresh tokens per subject. Exactly the
// tokens present in a subject's set are honorable; Remove doubles as the
// atomic consume used by rotation, its boolean answering "was this token
// still live". Mutations must be linearizable per subject key.
type Store interface {
	// Add inserts a token and resets the set's sliding TTL.
	Add(ctx context.Context, subject, token string, ttl time.Duration) error
	// Remove takes one token out, reporting whether it was present.
	Remove(ctx context.Context, subject, token string) (bool, error)
	// Contains reports membership without consuming.
	Contains(ctx context.Context, subject, token string) (bool, error)
	// Count returns the number of live tokens for a subject.
	Count(ctx context.Context, subject string) (int64, error)
	// Clear drops the whole set, revoking every device at once.
	Clear(ctx context.Context, subject string) error
}
