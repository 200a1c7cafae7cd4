package auth

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost is the work factor used for new password hashes.
const DefaultBcryptCost = 12

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) bool
}

// BcryptHasher is a PasswordHasher backed by bcrypt. At most GOMAXPROCS
// hashes run at once; further callers wait (or give up when their context
// ends) so a burst of logins cannot starve the rest of the server.
type BcryptHasher struct {
	cost    int
	workers *semaphore.Weighted
}

// NewBcryptHasher returns a hasher with the given cost. Costs outside
// bcrypt's range fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{
		cost:    cost,
		workers: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash of plaintext. It fails for passwords
// longer than 72 bytes and when ctx ends while waiting for a worker.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.workers.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. A malformed hash or an
// ended context yields false.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.workers.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
