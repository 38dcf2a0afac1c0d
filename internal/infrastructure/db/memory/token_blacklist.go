package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TokenBlacklist keeps revoked token IDs in a map until they expire. Used
// when Redis is disabled; revocations do not survive a restart.
type TokenBlacklist struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	revoked map[string]time.Time
}

func NewTokenBlacklist(clock clockwork.Clock) *TokenBlacklist {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenBlacklist{
		clock:   clock,
		revoked: make(map[string]time.Time),
	}
}

func (b *TokenBlacklist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prune()
	b.revoked[jti] = expiresAt
	return nil
}

func (b *TokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.revoked[jti]
	if !ok {
		return false, nil
	}
	if !b.clock.Now().Before(exp) {
		delete(b.revoked, jti)
		return false, nil
	}
	return true, nil
}

// prune drops expired entries. Caller must hold b.mu.
func (b *TokenBlacklist) prune() {
	now := b.clock.Now()
	for jti, exp := range b.revoked {
		if !now.Before(exp) {
			delete(b.revoked, jti)
		}
	}
}
