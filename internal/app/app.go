// Package app wires configuration, storage, services and the web server into
// a runnable application.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/vbonduro/poseidon/internal/auth"
	"github.com/vbonduro/poseidon/internal/config"
	"github.com/vbonduro/poseidon/internal/db"
	"github.com/vbonduro/poseidon/internal/metrics"
	"github.com/vbonduro/poseidon/internal/service"
	"github.com/vbonduro/poseidon/internal/store"
	"github.com/vbonduro/poseidon/internal/validation"
	"github.com/vbonduro/poseidon/internal/web"
	"github.com/vbonduro/poseidon/internal/web/templates"
	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 10 * time.Minute

// App owns the database handle and the HTTP server built on top of it.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	DB       *sql.DB
	Services web.Services
	Server   *web.Server
}

// New opens the configured database, applying pending migrations, and
// builds the application around it.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a, err := NewWithDB(cfg, logger, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// NewWithDB builds the application on an already migrated database.
func NewWithDB(cfg *config.Config, logger zerolog.Logger, database *sql.DB) (*App, error) {
	svcs, err := NewServices(cfg, logger, database)
	if err != nil {
		return nil, err
	}

	sessions := auth.NewSessions(auth.SessionConfig{
		Secret:     cfg.Auth.SessionSecret,
		TTL:        cfg.Auth.SessionTTL,
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.CookieSecure,
	})

	server := web.NewServer(svcs, templates.FS, web.Options{
		Sessions:   sessions,
		Metrics:    metrics.New(),
		DB:         database,
		Env:        cfg.Env,
		LoginRate:  rate.Limit(cfg.Auth.LoginRate),
		LoginBurst: cfg.Auth.LoginBurst,
	}, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       database,
		Services: svcs,
		Server:   server,
	}, nil
}

// NewServices builds the entity services over database.
func NewServices(cfg *config.Config, logger zerolog.Logger, database *sql.DB) (web.Services, error) {
	v := validation.New()

	users, err := service.NewUserService(store.NewUserStore(database), auth.NewHasher(cfg.Auth.BcryptCost), v, logger)
	if err != nil {
		return web.Services{}, fmt.Errorf("failed to create user service: %w", err)
	}

	return web.Services{
		Bids:        service.NewBidService(store.NewBidStore(database), v, logger),
		CurvePoints: service.NewCurvePointService(store.NewCurvePointStore(database), v, logger),
		Ratings:     service.NewRatingService(store.NewRatingStore(database), v, logger),
		Rules:       service.NewRuleService(store.NewRuleStore(database), v, logger),
		Trades:      service.NewTradeService(store.NewTradeStore(database), v, logger),
		Users:       users,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully within
// the configured timeout.
func (a *App) Run(ctx context.Context) error {
	srvCfg := a.Config.Server
	httpServer := &http.Server{
		Addr:         srvCfg.ListenAddr,
		Handler:      a.Server,
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
		IdleTimeout:  srvCfg.IdleTimeout,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.Server.StartCleanup(runCtx, limiterCleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", srvCfg.ListenAddr).Str("env", a.Config.Env).Msg("starting server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
