package server

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/dinerozz/nudge-engine/config"
	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/internal/service/activity"
	"github.com/dinerozz/nudge-engine/internal/service/insight"
	"github.com/dinerozz/nudge-engine/internal/service/ledger"
	"github.com/dinerozz/nudge-engine/internal/service/prompt"
	"github.com/dinerozz/nudge-engine/internal/service/taskanalysis"
	"github.com/dinerozz/nudge-engine/internal/service/workspace"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"go.uber.org/zap"
)

// App holds the shared services behind the HTTP API and the CLI.
type App struct {
	Config    *config.Config
	Clock     utils.Clock
	Hub       *activity.IngestHub
	Ledger    *ledger.Ledger
	Analyzer  *taskanalysis.Analyzer
	Selector  *prompt.Selector
	Registry  *workspace.Registry
	logger    *zap.Logger
	closeRepo func() error
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, closeStore, err := repository.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	catalog, err := prompt.DefaultCatalog()
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("failed to load prompt catalog: %w", err)
	}

	return newApp(cfg, store, closeStore, catalog, utils.SystemClock{}, logger), nil
}

func newApp(cfg *config.Config, store repository.DocumentStore, closeStore func() error, catalog []entity.SarcasticPrompt, clock utils.Clock, logger *zap.Logger) *App {
	hub := activity.NewIngestHub()
	l := ledger.New(ledger.Deps{
		Repo:   repository.NewActionRepository(store),
		Clock:  clock,
		Logger: logger.Named("ledger"),
	})

	activityCfg := activity.DefaultConfig()
	activityCfg.SamplingInterval = cfg.Engine.SamplingInterval
	activityCfg.Retention = cfg.Engine.ActivityRetention
	insightCfg := insight.DefaultConfig()
	insightCfg.AnalysisInterval = cfg.Engine.AnalysisInterval

	registry := workspace.NewRegistry(workspace.Config{
		Activity:          activityCfg,
		Insight:           insightCfg,
		SyntheticActivity: cfg.Engine.SyntheticActivity,
		IdleTimeout:       cfg.Engine.WorkspaceIdle,
	}, workspace.Deps{
		Store:  store,
		Ledger: l,
		Hub:    hub,
		Clock:  clock,
		Logger: logger,
	})

	return &App{
		Config:    cfg,
		Clock:     clock,
		Hub:       hub,
		Ledger:    l,
		Analyzer:  taskanalysis.NewAnalyzer(clock),
		Selector:  prompt.NewSelector(catalog, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), entity.Persona(cfg.Engine.DefaultPersona)),
		Registry:  registry,
		logger:    logger,
		closeRepo: closeStore,
	}
}

// Close stops every workspace and then releases storage.
func (a *App) Close(ctx context.Context) error {
	a.Registry.Close(ctx)
	if err := a.closeRepo(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
