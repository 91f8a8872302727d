package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brnhrs/warhorse-server/internal/auth"
	"github.com/brnhrs/warhorse-server/internal/chat"
	"github.com/brnhrs/warhorse-server/internal/config"
	"github.com/brnhrs/warhorse-server/internal/core"
	"github.com/brnhrs/warhorse-server/internal/relationship"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store"
	"github.com/brnhrs/warhorse-server/internal/store/memory"
	"github.com/brnhrs/warhorse-server/internal/store/sqlite"
	transporthttp "github.com/brnhrs/warhorse-server/internal/transport/http"
)

// App wires together the social graph, chat, and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application from configuration: a pluggable store
// (memory or sqlite), the session registry, the relationship and chat
// services, the single-goroutine Hub, and the gin-routed HTTP/WS server.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("backend", cfg.StoreBackend).Msg("store initialized")

	sessions := session.NewRegistry()

	hasher := auth.PasswordHasher(cfg.RequireHashedPassword, cfg.BcryptCost)
	verifier := auth.PasswordVerifier(cfg.RequireHashedPassword)
	rel := relationship.New(st, sessions, hasher, verifier)

	router := chat.NewRouter(st, sessions, store.RoomID(cfg.GeneralRoom))

	hub := core.NewHub(st, sessions, rel, router, store.RoomID(cfg.GeneralRoom), *logger)

	authService := auth.NewService([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.SessionTTL)
	hub.SetResumeTokenIssuer(authService)

	server := transporthttp.NewServer(hub, authService, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.New(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Run starts the Hub and HTTP server and blocks until context cancellation
// or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the store and other held resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
