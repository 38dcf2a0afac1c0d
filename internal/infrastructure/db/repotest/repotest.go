// Package repotest holds the behaviour every UserRepository and
// ApplicationRepository implementation must share. Each store runs it from
// its own tests against a fresh, empty backend.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// Repositories is one backend's pair of repositories over an empty store.
type Repositories struct {
	Users        ports.UserRepository
	Applications ports.ApplicationRepository
}

// Factory returns repositories over an empty store for a single subtest.
type Factory func(t *testing.T) Repositories

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Run exercises the repository contract against the backend built by newRepos.
func Run(t *testing.T, newRepos Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newRepos(t)) })
	t.Run("user_cascade", func(t *testing.T) { testCascade(t, newRepos(t)) })
	t.Run("applications_crud", func(t *testing.T) { testApplicationCRUD(t, newRepos(t)) })
	t.Run("applications_ownership", func(t *testing.T) { testOwnership(t, newRepos(t)) })
	t.Run("applications_list", func(t *testing.T) { testList(t, newRepos(t)) })
}

func newUser(username string) *domain.User {
	return &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    epoch,
		UpdatedAt:    epoch,
	}
}

func mustUser(t *testing.T, r Repositories, username string) *domain.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), newUser(username))
	require.NoError(t, err)
	return u
}

func newApplication(owner int64, title, company string, applied time.Time) *domain.JobApplication {
	return &domain.JobApplication{
		UserID:      owner,
		JobTitle:    title,
		Company:     company,
		DateApplied: applied,
		JobLink:     "https://jobs.example.com/" + company,
		Status:      domain.StatusApplied,
		CreatedAt:   epoch,
		UpdatedAt:   epoch,
	}
}

func mustApplication(t *testing.T, r Repositories, app *domain.JobApplication) *domain.JobApplication {
	t.Helper()
	require.NoError(t, r.Applications.Create(context.Background(), app))
	require.NotZero(t, app.ID)
	return app
}

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func testUsers(t *testing.T, r Repositories) {
	ctx := context.Background()

	alice := mustUser(t, r, "alice")
	assert.NotZero(t, alice.ID)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.True(t, alice.IsActive)

	_, err := r.Users.Create(ctx, newUser("alice"))
	assert.ErrorIs(t, err, domain.ErrUserExists)

	bob := mustUser(t, r, "bob")
	assert.NotEqual(t, alice.ID, bob.ID)

	got, err := r.Users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)

	got, err = r.Users.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = r.Users.FindByUsername(ctx, "carol")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = r.Users.FindByID(ctx, bob.ID+1000)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	users, err := r.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	require.NoError(t, r.Users.SetActive(ctx, bob.ID, false))
	got, err = r.Users.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.ErrorIs(t, r.Users.SetActive(ctx, bob.ID+1000, true), domain.ErrUserNotFound)

	require.NoError(t, r.Users.Delete(ctx, bob.ID))
	_, err = r.Users.FindByID(ctx, bob.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, r.Users.Delete(ctx, bob.ID), domain.ErrUserNotFound)
}

func testCascade(t *testing.T, r Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")

	a1 := mustApplication(t, r, newApplication(alice.ID, "Engineer", "Acme", day(1)))
	mustApplication(t, r, newApplication(alice.ID, "SRE", "Globex", day(2)))
	b1 := mustApplication(t, r, newApplication(bob.ID, "Analyst", "Initech", day(3)))

	require.NoError(t, r.Users.Delete(ctx, alice.ID))

	_, err := r.Applications.FindByID(ctx, a1.ID)
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	all, err := r.Applications.List(ctx, ports.ListApplicationsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b1.ID, all[0].ID)
}

func testApplicationCRUD(t *testing.T, r Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")

	app := newApplication(alice.ID, "Engineer", "Acme", day(30))
	app.Location = strPtr("Remote")
	mustApplication(t, r, app)

	got, err := r.Applications.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)
	assert.Equal(t, "Engineer", got.JobTitle)
	assert.Equal(t, domain.StatusApplied, got.Status)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Remote", *got.Location)
	assert.Nil(t, got.Notes)
	assert.True(t, got.DateApplied.Equal(day(30)), "date_applied %v", got.DateApplied)
	assert.True(t, got.CreatedAt.Equal(epoch), "created_at %v", got.CreatedAt)

	later := epoch.Add(time.Hour)
	got.Status = domain.StatusInterview
	got.Notes = strPtr("phone screen")
	got.Location = nil
	got.UpdatedAt = later
	got.CreatedAt = later
	require.NoError(t, r.Applications.Update(ctx, got))

	updated, err := r.Applications.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterview, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "phone screen", *updated.Notes)
	assert.Nil(t, updated.Location)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(epoch), "created_at must not change on update")

	require.NoError(t, r.Applications.Delete(ctx, app.ID, alice.ID))
	_, err = r.Applications.FindByID(ctx, app.ID)
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
	assert.ErrorIs(t, r.Applications.Delete(ctx, app.ID, alice.ID), domain.ErrApplicationNotFound)
}

func testOwnership(t *testing.T, r Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")

	app := mustApplication(t, r, newApplication(alice.ID, "Engineer", "Acme", day(1)))

	hijack := *app
	hijack.UserID = bob.ID
	hijack.JobTitle = "Hijacked"
	assert.ErrorIs(t, r.Applications.Update(ctx, &hijack), domain.ErrOwnershipMismatch)

	assert.ErrorIs(t, r.Applications.Delete(ctx, app.ID, bob.ID), domain.ErrApplicationNotFound)

	got, err := r.Applications.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.JobTitle)
	assert.Equal(t, alice.ID, got.UserID)
}

func testList(t *testing.T, r Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")

	goDev := newApplication(alice.ID, "Go Developer", "Acme", day(1))
	mustApplication(t, r, goDev)

	data := newApplication(alice.ID, "Data Engineer", "Globex", day(10))
	data.Location = strPtr("Berlin")
	data.Status = domain.StatusInterview
	mustApplication(t, r, data)

	sre := newApplication(alice.ID, "SRE", "Initech", day(5))
	sre.Status = domain.StatusRejected
	mustApplication(t, r, sre)

	other := newApplication(bob.ID, "100% Remote_Dev", "Hooli", day(7))
	mustApplication(t, r, other)

	ids := func(filter ports.ListApplicationsFilter) []int64 {
		t.Helper()
		apps, err := r.Applications.List(ctx, filter)
		require.NoError(t, err)
		out := make([]int64, 0, len(apps))
		for _, a := range apps {
			out = append(out, a.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter ports.ListApplicationsFilter
		want   []int64
	}{
		{"owner default order", ports.ListApplicationsFilter{OwnerID: alice.ID}, []int64{data.ID, sre.ID, goDev.ID}},
		{"every owner", ports.ListApplicationsFilter{}, []int64{data.ID, other.ID, sre.ID, goDev.ID}},
		{"status", ports.ListApplicationsFilter{OwnerID: alice.ID, Status: domain.StatusInterview}, []int64{data.ID}},
		{"company exact", ports.ListApplicationsFilter{OwnerID: alice.ID, Company: "Initech"}, []int64{sre.ID}},
		{"company is not a substring match", ports.ListApplicationsFilter{OwnerID: alice.ID, Company: "Init"}, []int64{}},
		{"search title case-insensitive", ports.ListApplicationsFilter{OwnerID: alice.ID, Search: []string{"go dev"}}, []int64{goDev.ID}},
		{"search location", ports.ListApplicationsFilter{OwnerID: alice.ID, Search: []string{"berlin"}}, []int64{data.ID}},
		{"search terms all match", ports.ListApplicationsFilter{OwnerID: alice.ID, Search: []string{"engineer", "globex"}}, []int64{data.ID}},
		{"search wildcard is literal", ports.ListApplicationsFilter{Search: []string{"100%"}}, []int64{other.ID}},
		{"search underscore is literal", ports.ListApplicationsFilter{Search: []string{"e_d"}}, []int64{other.ID}},
		{"search owner username", ports.ListApplicationsFilter{Search: []string{"BOB"}, SearchOwner: true}, []int64{other.ID}},
		{"owner search ignores location", ports.ListApplicationsFilter{Search: []string{"berlin"}, SearchOwner: true}, []int64{}},
		{"order by company", ports.ListApplicationsFilter{OwnerID: alice.ID, Ordering: []domain.Ordering{{Field: domain.OrderCompany}}}, []int64{goDev.ID, data.ID, sre.ID}},
		{"order by company desc", ports.ListApplicationsFilter{OwnerID: alice.ID, Ordering: []domain.Ordering{{Field: domain.OrderCompany, Desc: true}}}, []int64{sre.ID, data.ID, goDev.ID}},
		{"ties broken by newest id", ports.ListApplicationsFilter{OwnerID: alice.ID, Ordering: []domain.Ordering{{Field: domain.OrderCreatedAt}}}, []int64{sre.ID, data.ID, goDev.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter))
		})
	}
}
