package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/repotest"
)

func TestRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repositories {
		s := NewStore()
		return repotest.Repositories{Users: s.Users(), Applications: s.Applications()}
	})
}

func TestApplicationRepository_CreateRequiresOwner(t *testing.T) {
	s := NewStore()

	err := s.Applications().Create(context.Background(), &domain.JobApplication{UserID: 42, JobTitle: "Engineer"})
	assert.Error(t, err)
}

func TestApplicationRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	u, err := s.Users().Create(ctx, &domain.User{Username: "alice", IsActive: true})
	require.NoError(t, err)

	notes := "original"
	app := &domain.JobApplication{UserID: u.ID, JobTitle: "Engineer", Company: "Acme", Notes: &notes}
	require.NoError(t, s.Applications().Create(ctx, app))

	got, err := s.Applications().FindByID(ctx, app.ID)
	require.NoError(t, err)
	*got.Notes = "mutated"
	got.JobTitle = "mutated"

	again, err := s.Applications().FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", again.JobTitle)
	assert.Equal(t, "original", *again.Notes)
}

func TestTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	b := NewTokenBlacklist(clock)

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "jti-1", clock.Now().Add(time.Hour)))
	require.NoError(t, b.Revoke(ctx, "jti-2", clock.Now().Add(time.Minute)))

	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	clock.Advance(2 * time.Minute)

	revoked, err = b.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "entry outlived its token")

	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// revoking prunes expired entries
	clock.Advance(time.Hour)
	require.NoError(t, b.Revoke(ctx, "jti-3", clock.Now().Add(time.Hour)))
	assert.Len(t, b.revoked, 1)
}
