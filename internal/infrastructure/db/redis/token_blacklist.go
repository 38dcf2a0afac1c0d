package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// minBlacklistTTL keeps a revocation around briefly even when the token is
// already at (or past) its expiry, covering clock skew between instances.
const minBlacklistTTL = time.Second

// TokenBlacklist records revoked refresh tokens in Redis.
// Key format: blacklist:<jti>, expiring when the token itself would.
type TokenBlacklist struct {
	client *redis.Client
	clock  clockwork.Clock
}

// NewTokenBlacklist creates a TokenBlacklist wrapping the given Redis client.
// A nil clock falls back to the real one.
func NewTokenBlacklist(client *redis.Client, clock clockwork.Clock) *TokenBlacklist {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenBlacklist{client: client, clock: clock}
}

// Revoke marks jti as revoked until expiresAt.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.clock.Now())
	if ttl < minBlacklistTTL {
		ttl = minBlacklistTTL
	}
	if err := b.client.Set(ctx, b.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist check: %w", err)
	}
	return n > 0, nil
}

func (b *TokenBlacklist) key(jti string) string {
	return "blacklist:" + jti
}
