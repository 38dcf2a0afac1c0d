package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
	"github.com/jobtracker/jobtracker-api/internal/core/service"
	"github.com/jobtracker/jobtracker-api/internal/infrastructure/store"
	"github.com/jobtracker/jobtracker-api/internal/pkg/config"
	"github.com/jobtracker/jobtracker-api/pkg/logger"
)

// app is what every subcommand needs once the store is open.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
	auth  *service.AuthService
	admin *service.AdminService
}

func openApp(ctx context.Context, logLevel string) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.Init(logger.Options{Level: logLevel, Pretty: true, Output: os.Stderr, Service: "jobtrackerctl"})

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: st,
		auth: service.NewAuthService(st.Users, st.Blacklist, service.AuthConfig{
			Secret:     cfg.JWT.Secret,
			AccessTTL:  cfg.JWT.AccessTTL,
			RefreshTTL: cfg.JWT.RefreshTTL,
		}, nil, log),
		admin: service.NewAdminService(st.Users, st.Applications, log),
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		a.log.Error().Err(err).Msg("failed to close store")
	}
}

// withApp opens the store for the duration of one command.
func withApp(logLevel *string, fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx, *logLevel)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())
		return fn(ctx, a, cmd, args)
	}
}

func checkCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify store connectivity, schema version and list users",
		Args:  cobra.NoArgs,
		RunE: withApp(logLevel, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store driver: %s\n", a.store.Driver)

			for name, check := range a.store.Checks {
				if err := check.Ping(ctx); err != nil {
					return fmt.Errorf("%s unreachable: %w", name, err)
				}
				fmt.Fprintf(out, "%s: ok\n", name)
			}

			status, err := a.store.SchemaStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Schema: %s\n", status)

			users, err := a.admin.ListUsers(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Users: %d\n", len(users))
			return printUsers(out, users)
		}),
	}
}

func migrateCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (postgres) or create indexes (mongo)",
		Args:  cobra.NoArgs,
		RunE: withApp(logLevel, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if err := a.store.Migrate(ctx, a.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		}),
	}
}

func usersCmd(logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: withApp(logLevel, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			users, err := a.admin.ListUsers(ctx)
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), users)
		}),
	})

	var (
		password string
		email    string
		staff    bool
	)
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(logLevel, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			// The API stores whatever address it is given; operators get a check.
			if email != "" {
				if err := validator.New().Var(email, "email"); err != nil {
					return domain.ErrInvalidEmail
				}
			}
			role := domain.RoleUser
			if staff {
				role = domain.RoleStaff
			}
			user, err := a.auth.CreateUser(ctx, ports.RegisterInput{
				Username: args[0],
				Password: password,
				Email:    email,
			}, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q (id %d).\n", user.Role, user.Username, user.ID)
			return nil
		}),
	}
	create.Flags().StringVar(&password, "password", "", "Password (at least 8 characters)")
	create.Flags().StringVar(&email, "email", "", "Email address")
	create.Flags().BoolVar(&staff, "staff", false, "Grant access to the admin API")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user and all of their applications",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(logLevel, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			user, err := a.admin.UserByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.admin.DeleteUser(ctx, user.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %q.\n", user.Username)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate <username>",
		Short: "Prevent a user from logging in",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(logLevel, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			user, err := a.admin.UserByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.admin.SetUserActive(ctx, user.ID, false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated user %q.\n", user.Username)
			return nil
		}),
	})

	return cmd
}

func printUsers(w io.Writer, users []*domain.User) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tACTIVE\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", u.ID, u.Username, u.Role, u.IsActive, u.Email)
	}
	return tw.Flush()
}
