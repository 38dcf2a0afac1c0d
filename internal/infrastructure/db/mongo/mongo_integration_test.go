package mongo

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/repotest"
)

var (
	testClient *mongo.Client
	testURI    string
	dbCounter  atomic.Int64
)

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

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate mongo container: %v\n", err)
		}
	}()

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get mongo endpoint: %v\n", err)
		return 1
	}
	testURI = "mongodb://" + endpoint

	testClient, _, err = Connect(ctx, Config{URI: testURI, Database: "jobtracker"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		return 1
	}
	defer func() { _ = testClient.Disconnect(ctx) }()

	return m.Run()
}

// setupTestDB returns an indexed, empty database private to the calling test.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db := testClient.Database(fmt.Sprintf("jobtracker_test_%d", dbCounter.Add(1)))
	require.NoError(t, EnsureIndexes(ctx, db))
	t.Cleanup(func() { _ = db.Drop(ctx) })
	return db
}

func TestRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repositories {
		db := setupTestDB(t)
		return repotest.Repositories{
			Users:        NewUserRepository(db),
			Applications: NewApplicationRepository(db),
		}
	})
}

func TestPinger(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Pinger{DB: db}.Ping(context.Background()))
}
