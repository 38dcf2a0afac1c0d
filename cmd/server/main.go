// @title                       Job Tracker API
// @version                     1.0
// @description                 Track job applications per user with JWT authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	_ "github.com/jobtracker/jobtracker-api/docs"
	"github.com/jobtracker/jobtracker-api/internal/api"
	"github.com/jobtracker/jobtracker-api/internal/core/service"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/store"
	"github.com/jobtracker/jobtracker-api/internal/pkg/config"
	"github.com/jobtracker/jobtracker-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		// Logger is not configured yet.
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "jobtracker-api",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("application starting")

	if err := run(cfg, log); err != nil {
		log.Fatal().Stack().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := st.Migrate(ctx, log); err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	authService := service.NewAuthService(st.Users, st.Blacklist, service.AuthConfig{
		Secret:        cfg.JWT.Secret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		RotateRefresh: cfg.JWT.RotateRefresh,
	}, clock, log.With().Str("component", "auth").Logger())
	appService := service.NewApplicationService(st.Applications, clock, log.With().Str("component", "applications").Logger())
	adminService := service.NewAdminService(st.Users, st.Applications, log.With().Str("component", "admin").Logger())

	e := api.NewRouter(api.Dependencies{
		Auth:          authService,
		Applications:  appService,
		Admin:         adminService,
		Checks:        st.Checks,
		Log:           log,
		EnableSwagger: cfg.SwaggerEnabled,
		EnableMetrics: true,
	})

	// The dashboard and the browser extension call the API from other origins.
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(e),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, cleaning up...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
