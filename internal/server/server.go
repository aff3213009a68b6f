package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/Tyrowin/webhooker/internal/hub"
	"github.com/Tyrowin/webhooker/internal/security"
	"github.com/Tyrowin/webhooker/internal/store"
	"github.com/Tyrowin/webhooker/web"
)

// Server is the assembled service: store, credential pipeline, broadcast
// hub and HTTP front end.
type Server struct {
	cfg    *Config
	logger *slog.Logger
	store  store.Store
	hub    *hub.Hub
	http   *http.Server
}

// New opens the store, applies migrations, ensures the bootstrap identity
// and wires the router.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	srv, err := newWithStore(ctx, cfg, logger, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return srv, nil
}

func newWithStore(ctx context.Context, cfg *Config, logger *slog.Logger, st store.Store) (*Server, error) {
	version, err := store.Migrate(ctx, st)
	if err != nil {
		return nil, err
	}
	if version > 0 {
		logger.Info("database schema ready", slog.Int64("version", version))
	}

	hasher, err := security.NewHasher(cfg.Salt, cfg.HashParams())
	if err != nil {
		return nil, err
	}
	if _, err := store.EnsureBootstrapIdentity(ctx, st, hasher, cfg.BootstrapPassword, logger); err != nil {
		return nil, err
	}
	secret, err := tokenSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	tokens, err := security.NewTokenIssuer(secret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	static, err := staticFS(cfg.StaticDir)
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics()
	h := hub.New(hub.Options{
		SendBuffer:   cfg.HubSendBuffer,
		PingInterval: cfg.HubPingInterval,
		WriteTimeout: cfg.HubWriteTimeout,
		CheckOrigin:  NewOriginChecker(cfg.AllowedOrigins, logger),
		Logger:       logger.With(slog.String("component", "hub")),
		Metrics:      hub.NewMetrics(metrics.Registerer()),
	})

	router := SetupRoutes(Dependencies{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Gate:    security.NewGate(st, tokens, hasher),
		Hub:     h,
		Metrics: metrics,
		Static:  static,
	})

	return &Server{
		cfg:    cfg,
		logger: logger,
		store:  st,
		hub:    h,
		http:   CreateServer(cfg, router),
	}, nil
}

// tokenSecret returns the configured signing secret or a random one that
// lives as long as the process.
func tokenSecret(cfg *Config, logger *slog.Logger) (string, error) {
	if cfg.TokenSecret != "" {
		return cfg.TokenSecret, nil
	}
	secret, err := security.RandomSecret()
	if err != nil {
		return "", err
	}
	logger.Warn("WEBHOOKER_TOKEN_SECRET not set, using a random secret; issued tokens will not survive a restart")
	return secret, nil
}

func staticFS(dir string) (fs.FS, error) {
	if dir == "" {
		return web.Static(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *hub.Hub {
	return s.hub
}

// Run serves until ctx is cancelled or the listener fails, then shuts the
// HTTP server and the hub down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := StartServer(s.http, s.logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	httpErr := ShutdownServer(s.http, s.cfg.ShutdownTimeout, s.logger)
	hubErr := s.hub.Shutdown(s.cfg.ShutdownTimeout)
	return errors.Join(httpErr, hubErr)
}

// Close releases the store.
func (s *Server) Close() {
	s.store.Close()
}
