package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/mongo"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/redis"
	"github.com/jobtracker/jobtracker-api/internal/pkg/config"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StoreDriver: config.StoreMemory}

	s, err := Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	assert.Equal(t, config.StoreMemory, s.Driver)
	assert.Empty(t, s.Checks)
	require.NoError(t, s.Migrate(ctx, zerolog.Nop()))

	status, err := s.SchemaStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "in-memory, no schema", status)

	u, err := s.Users.Create(ctx, &domain.User{Username: "alice", IsActive: true})
	require.NoError(t, err)
	require.NoError(t, s.Applications.Create(ctx, &domain.JobApplication{UserID: u.ID, JobTitle: "Engineer", Company: "Acme"}))

	revoked, err := s.Blacklist.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "sqlite"}, zerolog.Nop())
	assert.Error(t, err)
}

// Every readiness check the store registers satisfies the port the router consumes.
var (
	_ ports.Checker = (*pgxpool.Pool)(nil)
	_ ports.Checker = mongo.Pinger{}
	_ ports.Checker = redis.Pinger{}
)
