package postgres

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/repotest"
)

var testPool *pgxpool.Pool

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

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("jobtracker"),
		postgres.WithUsername("jobtracker"),
		postgres.WithPassword("jobtracker"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
		}
	}()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
		return 1
	}

	testPool, err = Connect(ctx, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		return 1
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool, zerolog.Nop()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		return 1
	}

	return m.Run()
}

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	_, err := testPool.Exec(context.Background(), `TRUNCATE users, job_applications RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return testPool
}

func TestRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repositories {
		pool := setupTestPool(t)
		return repotest.Repositories{
			Users:        NewUserRepository(pool),
			Applications: NewApplicationRepository(pool),
		}
	})
}

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, pool, zerolog.Nop()))

	current, latest, err := MigrationStatus(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	assert.EqualValues(t, 2, latest)
}

func TestStatusConstraint(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	var userID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ('alice', 'x') RETURNING id`).Scan(&userID))

	_, err := pool.Exec(ctx, `
		INSERT INTO job_applications (user_id, job_title, company, date_applied, job_link, status)
		VALUES ($1, 'Engineer', 'Acme', '2024-04-30', 'https://acme.example.com', 'Hired')`, userID)
	assert.Error(t, err, "status outside the enum must be rejected by the table")
}
