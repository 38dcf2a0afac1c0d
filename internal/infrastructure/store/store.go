// Package store opens the backend selected by STORE_DRIVER and exposes it
// through the repository ports. Both the API server and jobtrackerctl use it.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/jobtracker/jobtracker-api/internal/core/ports"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/memory"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/mongo"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/postgres"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/db/redis"
	"github.com/jobtracker/jobtracker-api/internal/pkg/config"
)

// Store bundles the repositories of one backend.
type Store struct {
	Driver       string
	Users        ports.UserRepository
	Applications ports.ApplicationRepository
	Blacklist    ports.TokenBlacklist
	// Checks feed the readiness probe.
	Checks map[string]ports.Checker

	pool    *pgxpool.Pool
	mongoDB *mongodriver.Database
	closers []func(context.Context) error
}

// Open connects to the configured backend and token blacklist. Schema
// migrations are not applied here; call Migrate.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	s := &Store{Driver: cfg.StoreDriver, Checks: make(map[string]ports.Checker)}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		s.Users = postgres.NewUserRepository(pool)
		s.Applications = postgres.NewApplicationRepository(pool)
		s.Checks["postgres"] = pool
		s.closers = append(s.closers, func(context.Context) error { pool.Close(); return nil })
		log.Info().Msg("connected to postgres")

	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		s.mongoDB = db
		s.Users = mongo.NewUserRepository(db)
		s.Applications = mongo.NewApplicationRepository(db)
		s.Checks["mongodb"] = mongo.Pinger{DB: db}
		s.closers = append(s.closers, client.Disconnect)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	case config.StoreMemory:
		mem := memory.NewStore()
		s.Users = mem.Users()
		s.Applications = mem.Applications()
		log.Warn().Msg("using in-memory store; data is lost on restart")

	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.StoreDriver)
	}

	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.Blacklist = redis.NewTokenBlacklist(client, clockwork.NewRealClock())
		s.Checks["redis"] = redis.Pinger{Client: client}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	} else {
		s.Blacklist = memory.NewTokenBlacklist(clockwork.NewRealClock())
	}

	return s, nil
}

// Migrate brings the schema up to date: tern migrations for postgres,
// indexes for mongo, nothing for memory.
func (s *Store) Migrate(ctx context.Context, log zerolog.Logger) error {
	switch {
	case s.pool != nil:
		return postgres.RunMigrations(ctx, s.pool, log)
	case s.mongoDB != nil:
		return mongo.EnsureIndexes(ctx, s.mongoDB)
	}
	return nil
}

// SchemaStatus describes how far the schema is migrated, for diagnostics.
func (s *Store) SchemaStatus(ctx context.Context) (string, error) {
	switch {
	case s.pool != nil:
		current, latest, err := postgres.MigrationStatus(ctx, s.pool)
		if err != nil {
			return "", err
		}
		if current < latest {
			return fmt.Sprintf("version %d of %d (pending migrations)", current, latest), nil
		}
		return fmt.Sprintf("version %d of %d (up to date)", current, latest), nil
	case s.mongoDB != nil:
		return "indexes are created on migrate", nil
	}
	return "in-memory, no schema", nil
}

// Close releases every connection in reverse order of opening.
func (s *Store) Close(ctx context.Context) error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
