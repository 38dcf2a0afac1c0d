package ports

import (
	"context"
	"time"
)

// TokenBlacklist remembers revoked refresh-token IDs until they would have
// expired anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
