// Package app loads config and wires the worker's dependency graph.
package app

import (
	"context"
	"fmt"
	"os"

	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/db"
	"github.com/yungbote/sermonclips-backend/internal/jobs/handlers"
	jobrt "github.com/yungbote/sermonclips-backend/internal/jobs/runtime"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/temporalx"
	"github.com/yungbote/sermonclips-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Temporal temporalsdkclient.Client
	Worker   *temporalworker.Runner
}

func New() (*App, error) {
	logMode := os.Getenv("APP_ENV")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	theDB := pg.DB()

	tc, err := temporalx.NewClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init temporal: %w", err)
	}
	if tc == nil {
		log.Sync()
		return nil, fmt.Errorf("temporal not configured (TEMPORAL_ADDRESS)")
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, tc)

	registry := jobrt.NewRegistry()
	toRegister := []jobrt.Handler{
		&handlers.SuggestClips{Log: log, Service: serviceset.Suggestion, Sermons: reposet.Sermon, Policy: cfg.RetryPolicy},
		&handlers.GenerateEmbeddings{Log: log, Service: serviceset.Embedding, Sermons: reposet.Sermon, Policy: cfg.RetryPolicy},
	}
	for _, h := range toRegister {
		if err := registry.Register(h); err != nil {
			log.Sync()
			return nil, fmt.Errorf("register handler: %w", err)
		}
	}

	runner, err := temporalworker.NewRunner(log, tc, theDB, reposet.JobRun, registry)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init temporal worker: %w", err)
	}

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Temporal: tc,
		Worker:   runner,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	if a == nil || a.Worker == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Worker.Start(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Temporal != nil {
		a.Temporal.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
