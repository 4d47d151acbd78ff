// Package app wires configuration into the running components shared by the
// server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ii-tuitions/mocktest/internal/ai"
	"github.com/ii-tuitions/mocktest/internal/archive"
	"github.com/ii-tuitions/mocktest/internal/curriculum"
	"github.com/ii-tuitions/mocktest/internal/platform/cache"
	"github.com/ii-tuitions/mocktest/internal/platform/config"
	"github.com/ii-tuitions/mocktest/internal/quiz"
	"github.com/ii-tuitions/mocktest/internal/session"
	"github.com/ii-tuitions/mocktest/internal/web"
)

// App holds the components built from a Config.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Catalog  *curriculum.Catalog
	Provider ai.Provider
	Archive  archive.Store
	Sessions session.Store
	Service  *quiz.Service

	cache *cache.Cache
}

// NewLogger builds the slog logger described by cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds every component. Sessions are only connected when withSessions
// is set, so CLI commands that never serve pages do not need Redis.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, withSessions bool) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	catalog, err := curriculum.Load(cfg.CurriculumPath)
	if err != nil {
		return nil, err
	}
	a.Catalog = catalog

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("creating AI provider: %w", err)
	}
	a.Provider = provider

	store, err := archive.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	a.Archive = store

	if withSessions {
		if err := a.openSessions(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Service = quiz.NewService(catalog, provider,
		quiz.WithArchive(store),
		quiz.WithMaxTokens(cfg.AI.MaxTokens),
		quiz.WithStrictPayload(cfg.StrictPayload),
	)

	logger.Info("application ready",
		"ai_provider", provider.Name(),
		"archive", cfg.Archive.Driver,
		"sessions", cfg.Session.Driver,
		"strict_payload", cfg.StrictPayload,
	)
	return a, nil
}

func (a *App) openSessions(ctx context.Context) error {
	switch a.Config.Session.Driver {
	case "", "memory":
		a.Sessions = session.NewMemoryStore(a.Config.Session.TTL)
	case "redis":
		c, err := cache.New(ctx, a.Config.Cache)
		if err != nil {
			return fmt.Errorf("connecting session cache: %w", err)
		}
		a.cache = c
		a.Sessions = session.NewRedisStore(c.Client, a.Config.Session.TTL)
	default:
		return fmt.Errorf("unknown session driver %q", a.Config.Session.Driver)
	}
	return nil
}

// KeyStatus describes the selected provider's credential for the home page.
func KeyStatus(cfg config.AIConfig) web.KeyStatus {
	var key string
	switch cfg.Provider {
	case "anthropic":
		key = cfg.Anthropic.APIKey
	case "openai":
		key = cfg.OpenAI.APIKey
	case "google":
		key = cfg.Google.APIKey
	case "openrouter":
		key = cfg.OpenRouter.APIKey
	default:
		return web.KeyStatus{Configured: true, Preview: "not required for " + cfg.Provider}
	}

	if !ai.IsConfiguredKey(key) {
		return web.KeyStatus{}
	}
	ks := web.KeyStatus{Configured: true, Preview: ai.MaskKey(key)}
	if cfg.Provider == "anthropic" {
		if err := ai.CheckKeyFormat(key); err != nil {
			ks.FormatErr = err.Error()
		}
	}
	return ks
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler builds the HTTP handler with readiness checks for the configured
// backing services.
func (a *App) Handler() (http.Handler, error) {
	if a.Sessions == nil {
		return nil, errors.New("sessions not opened")
	}

	opts := []web.Option{
		web.WithLogger(a.Logger),
		web.WithCookie(a.Config.Session.CookieName, a.Config.Session.TTL),
		web.WithKeyStatus(KeyStatus(a.Config.AI)),
	}
	if a.cache != nil {
		opts = append(opts, web.WithReadinessCheck("sessions", a.cache.HealthCheck))
	}
	if hc, ok := a.Archive.(healthChecker); ok {
		opts = append(opts, web.WithReadinessCheck("archive", hc.HealthCheck))
	}

	h, err := web.NewHandler(a.Service, a.Sessions, opts...)
	if err != nil {
		return nil, err
	}
	return h.Routes(), nil
}

// Close releases the archive and the session cache.
func (a *App) Close() {
	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			a.Logger.Warn("closing archive", "error", err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Logger.Warn("closing session cache", "error", err)
		}
	}
}
