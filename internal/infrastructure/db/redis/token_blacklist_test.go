package redis

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var testAddr string

func TestMain(m *testing.M) {
	flag.Parse()

	// Container-backed tests are skipped with -short.
	if testing.Short() {
		os.Exit(m.Run())
	}

	os.Exit(runWithContainer(m))
}

func runWithContainer(m *testing.M) int {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
		}
	}()

	testAddr, err = container.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		return 1
	}
	return m.Run()
}

func setupTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: testAddr})
	require.NoError(t, err)
	require.NoError(t, client.FlushAll(ctx).Err())

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestTokenBlacklist_RevokeAndCheck(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	b := NewTokenBlacklist(client, nil)

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, "blacklist:jti-1").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
}

func TestTokenBlacklist_ExpiredTokenGetsMinimumTTL(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	b := NewTokenBlacklist(client, clockwork.NewRealClock())

	require.NoError(t, b.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))

	ttl, err := client.PTTL(ctx, "blacklist:jti-old").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, minBlacklistTTL)
}

func TestTokenBlacklist_UsesClock(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(fixed)
	b := NewTokenBlacklist(client, clock)

	require.NoError(t, b.Revoke(ctx, "jti-2", fixed.Add(10*time.Minute)))

	ttl, err := client.TTL(ctx, "blacklist:jti-2").Result()
	require.NoError(t, err)
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 5)

	// The TTL follows the injected clock, not wall time.
	clock.Advance(9 * time.Minute)
	require.NoError(t, b.Revoke(ctx, "jti-3", fixed.Add(10*time.Minute)))

	ttl, err = client.TTL(ctx, "blacklist:jti-3").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 5)
}

func TestPinger(t *testing.T) {
	client := setupTestClient(t)
	assert.NoError(t, Pinger{Client: client}.Ping(context.Background()))
}
