// Package workspace builds and owns the per-user engine components.
package workspace

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/internal/schedule"
	"github.com/dinerozz/nudge-engine/internal/service/activity"
	"github.com/dinerozz/nudge-engine/internal/service/focus"
	"github.com/dinerozz/nudge-engine/internal/service/insight"
	"github.com/dinerozz/nudge-engine/internal/service/ledger"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrClosed      = errors.New("workspace registry is closed")
	ErrMissingUser = errors.New("user id is required")
)

const DefaultIdleTimeout = 2 * time.Hour

type Config struct {
	Activity          activity.Config
	Insight           insight.Config
	SyntheticActivity bool
	// IdleTimeout is how long a workspace may go without a Get before it is
	// evicted. Workspaces with an open focus session are kept.
	IdleTimeout time.Duration
}

type Deps struct {
	Store  repository.DocumentStore
	Ledger *ledger.Ledger
	Hub    *activity.IngestHub
	Clock  utils.Clock
	IDs    utils.IDGenerator
	Rand   *rand.Rand
	Logger *zap.Logger
}

// Workspace is everything the engine keeps running for one user.
type Workspace struct {
	UserID    string
	Collector *activity.Collector
	Signals   *focus.SignalBus
	Tracker   *focus.Tracker
	Insights  *insight.Engine
}

type Registry struct {
	cfg          Config
	deps         Deps
	activityRepo repository.ActivityRepository
	focusRepo    repository.FocusRepository
	insightRepo  repository.InsightRepository
	logger       *zap.Logger

	evictLoop *schedule.Loop

	mu         sync.Mutex
	workspaces map[string]*Workspace
	lastUsed   map[string]time.Time
	closed     bool
	closeOnce  sync.Once
	randMu     sync.Mutex
}

func NewRegistry(cfg Config, deps Deps) *Registry {
	if deps.Clock == nil {
		deps.Clock = utils.SystemClock{}
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewUUID
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if deps.Hub == nil {
		deps.Hub = activity.NewIngestHub()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	r := &Registry{
		cfg:          cfg,
		deps:         deps,
		activityRepo: repository.NewActivityRepository(deps.Store),
		focusRepo:    repository.NewFocusRepository(deps.Store),
		insightRepo:  repository.NewInsightRepository(deps.Store),
		logger:       deps.Logger.Named("workspace"),
		workspaces:   make(map[string]*Workspace),
		lastUsed:     make(map[string]time.Time),
	}
	r.evictLoop = schedule.NewLoop("workspace-eviction", cfg.IdleTimeout/2, func(ctx context.Context) { r.EvictIdle(ctx) }, r.logger)
	return r
}

func (r *Registry) Hub() *activity.IngestHub {
	return r.deps.Hub
}

// Get returns the user's workspace, creating it on first use. A new
// workspace restores persisted permissions and starts its analysis loop.
func (r *Registry) Get(ctx context.Context, userID string) (*Workspace, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	r.lastUsed[userID] = r.deps.Clock.Now()
	if ws, ok := r.workspaces[userID]; ok {
		return ws, nil
	}

	ws := r.build(userID)
	r.workspaces[userID] = ws
	r.evictLoop.Start(context.WithoutCancel(ctx))

	ws.Collector.Restore(ctx)
	ws.Insights.Start(ctx)

	r.logger.Info("workspace created", zap.String("user_id", userID), zap.Bool("monitoring", ws.Collector.IsMonitoring()))
	return ws, nil
}

func (r *Registry) build(userID string) *Workspace {
	sources := r.deps.Hub.Sources()
	if r.cfg.SyntheticActivity {
		for _, kind := range entity.PermissionKinds {
			sources = append(sources, activity.NewSyntheticSource(kind, r.cfg.Activity.SamplingInterval, r.childRand()))
		}
	}

	collector := activity.NewCollector(userID, r.cfg.Activity, activity.Deps{
		Repo:    r.activityRepo,
		Sources: sources,
		Clock:   r.deps.Clock,
		IDs:     r.deps.IDs,
		Logger:  r.deps.Logger.Named("activity"),
	})

	signals := focus.NewSignalBus()
	var actions focus.ActionLogger
	var streaks insight.StreakReader
	if r.deps.Ledger != nil {
		actions = r.deps.Ledger
		streaks = r.deps.Ledger
	}

	tracker := focus.NewTracker(focus.Deps{
		Repo:    r.focusRepo,
		Signals: signals,
		Actions: actions,
		Clock:   r.deps.Clock,
		IDs:     r.deps.IDs,
		Logger:  r.deps.Logger.Named("focus").With(zap.String("user_id", userID)),
	})

	engine := insight.NewEngine(userID, r.cfg.Insight, insight.Deps{
		Activity: collector,
		Streaks:  streaks,
		Repo:     r.insightRepo,
		Clock:    r.deps.Clock,
		IDs:      r.deps.IDs,
		Logger:   r.deps.Logger.Named("insight"),
	})

	return &Workspace{
		UserID:    userID,
		Collector: collector,
		Signals:   signals,
		Tracker:   tracker,
		Insights:  engine,
	}
}

func (r *Registry) childRand() *rand.Rand {
	r.randMu.Lock()
	defer r.randMu.Unlock()
	return rand.New(rand.NewPCG(r.deps.Rand.Uint64(), r.deps.Rand.Uint64()))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// EvictIdle stops and forgets workspaces unused for longer than the idle
// timeout. Persisted state stays, so a later Get restores it.
func (r *Registry) EvictIdle(ctx context.Context) int {
	now := r.deps.Clock.Now()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}
	var evicted []*Workspace
	for userID, ws := range r.workspaces {
		if now.Sub(r.lastUsed[userID]) < r.cfg.IdleTimeout || ws.Tracker.State() != entity.FocusIdle {
			continue
		}
		delete(r.workspaces, userID)
		delete(r.lastUsed, userID)
		evicted = append(evicted, ws)
	}
	r.mu.Unlock()

	for _, ws := range evicted {
		ws.Collector.StopMonitoring()
		ws.Insights.Stop()
		r.deps.Hub.Forget(ws.UserID)
	}
	if len(evicted) > 0 {
		r.logger.Info("idle workspaces evicted", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Close flushes open focus sessions and stops every background loop. Only
// the first call does any work.
func (r *Registry) Close(ctx context.Context) {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		workspaces := make([]*Workspace, 0, len(r.workspaces))
		for _, ws := range r.workspaces {
			workspaces = append(workspaces, ws)
		}
		r.mu.Unlock()

		r.evictLoop.Stop()
		for _, ws := range workspaces {
			ws.Tracker.StopTracking(ctx)
			ws.Collector.StopMonitoring()
			ws.Insights.Stop()
		}
		r.logger.Info("workspaces closed", zap.Int("count", len(workspaces)))
	})
}
