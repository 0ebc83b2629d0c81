package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vbonduro/poseidon/internal/app"
	"github.com/vbonduro/poseidon/internal/config"
	"github.com/vbonduro/poseidon/internal/db"
	"github.com/vbonduro/poseidon/internal/domain"
	"github.com/vbonduro/poseidon/internal/logging"
	"github.com/vbonduro/poseidon/internal/validation"
)

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	logger, cleanup, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, cleanup, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Error().Err(err).Msg("failed to close database")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			database, err := db.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			logger.Info().Str("path", cfg.Database.Path).Msg("database migrated")
			return nil
		},
	}
}

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var u domain.User
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			return createUser(cmd.Context(), cmd, cfg, logger, &u)
		},
	}
	createCmd.Flags().StringVar(&u.Username, "username", "", "login name")
	createCmd.Flags().StringVar(&u.Password, "password", "", "password (8+ chars with an uppercase letter, a digit and a symbol)")
	createCmd.Flags().StringVar(&u.Fullname, "fullname", "", "display name")
	createCmd.Flags().StringVar(&u.Role, "role", domain.RoleUser, "ADMIN or USER")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func createUser(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger, u *domain.User) error {
	if u.Fullname == "" {
		u.Fullname = u.Username
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	svcs, err := app.NewServices(cfg, logger, database)
	if err != nil {
		return err
	}

	created, err := svcs.Users.Create(ctx, "cli", u)
	if err != nil {
		if verrs, ok := validation.AsErrors(err); ok {
			fields := make([]string, 0, len(verrs))
			for f := range verrs {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f, verrs[f])
			}
			return errors.New("user not created")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", created.Username, created.ID, created.Role)
	return nil
}
