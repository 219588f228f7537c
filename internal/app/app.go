// app собирает клиент из конфигурации:
// config -> logger -> token store -> metrics -> apiclient -> session -> recommender.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/pc-recommender/internal/apiclient"
	"github.com/pribylovaa/pc-recommender/internal/config"
	"github.com/pribylovaa/pc-recommender/internal/recommender"
	"github.com/pribylovaa/pc-recommender/internal/session"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
)

// Deps — внешние зависимости, которые задаёт фронтенд (CLI, тесты).
type Deps struct {
	Logger    *slog.Logger
	Navigator session.Navigator
	Prompter  session.Prompter
	// Registry — куда регистрировать метрики клиента (nil — новый реестр).
	Registry *prometheus.Registry
}

// App — собранный клиент.
type App struct {
	Config      *config.Config
	Log         *slog.Logger
	Registry    *prometheus.Registry
	Store       tokenstore.Store
	Client      *apiclient.Client
	Session     *session.Session
	Recommender *recommender.Service

	closeStore func()
}

// New собирает App. Сессия создаётся, но не загружается: Bootstrap вызывает фронтенд.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	const op = "app.New"

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	store, closeStore, err := NewStore(ctx, cfg.Tokens, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:        cfg.API.BaseURL,
		Store:          store,
		UserAgent:      cfg.API.UserAgent,
		RequestTimeout: cfg.Timeouts.Request,
		RefreshTimeout: cfg.Timeouts.Refresh,
		Logger:         log,
		Metrics:        apiclient.NewMetrics(reg),
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess := session.New(client, store, deps.Navigator, deps.Prompter, log)

	log.Debug("app_initialized",
		slog.String("base_url", cfg.API.BaseURL),
		slog.String("token_store", cfg.Tokens.Driver),
	)

	return &App{
		Config:      cfg,
		Log:         log,
		Registry:    reg,
		Store:       store,
		Client:      client,
		Session:     sess,
		Recommender: recommender.New(client),
		closeStore:  closeStore,
	}, nil
}

// Close освобождает ресурсы хранилища токенов.
func (a *App) Close() {
	if a.closeStore != nil {
		a.closeStore()
	}
}
