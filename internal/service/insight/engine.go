package insight

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/internal/schedule"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"go.uber.org/zap"
)

// ActivityReader is the read side of the activity collector.
type ActivityReader interface {
	Activities(ctx context.Context, r *entity.TimeRange) []entity.ActivityEvent
	ProductivityMetrics(ctx context.Context, r entity.TimeRange) entity.ProductivityMetrics
	Summary(ctx context.Context, r entity.TimeRange) entity.ActivitySummary
}

type StreakReader interface {
	StreakData(ctx context.Context, userID string) entity.StreakData
}

type Config struct {
	AnalysisInterval time.Duration
	ContextWindow    time.Duration
	BreakLookback    time.Duration
	BreakThreshold   time.Duration
	InsightRetention time.Duration
	// An insight type is not repeated within this window.
	InsightCooldown time.Duration
	MaxInsights     int
}

func DefaultConfig() Config {
	return Config{
		AnalysisInterval: 5 * time.Minute,
		ContextWindow:    30 * time.Minute,
		BreakLookback:    2 * time.Hour,
		BreakThreshold:   45 * time.Minute,
		InsightRetention: 72 * time.Hour,
		InsightCooldown:  30 * time.Minute,
		MaxInsights:      500,
	}
}

type Deps struct {
	Activity ActivityReader
	Streaks  StreakReader
	Repo     repository.InsightRepository
	Clock    utils.Clock
	IDs      utils.IDGenerator
	Logger   *zap.Logger
}

// Engine periodically turns one user's activity into insights and
// recommendations.
type Engine struct {
	userID   string
	cfg      Config
	activity ActivityReader
	streaks  StreakReader
	repo     repository.InsightRepository
	clock    utils.Clock
	newID    utils.IDGenerator
	logger   *zap.Logger
	loop     *schedule.Loop

	writeMu sync.Mutex
}

func NewEngine(userID string, cfg Config, deps Deps) *Engine {
	defaults := DefaultConfig()
	if cfg.AnalysisInterval <= 0 {
		cfg.AnalysisInterval = defaults.AnalysisInterval
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaults.ContextWindow
	}
	if cfg.BreakLookback <= 0 {
		cfg.BreakLookback = defaults.BreakLookback
	}
	if cfg.BreakThreshold <= 0 {
		cfg.BreakThreshold = defaults.BreakThreshold
	}
	if cfg.InsightRetention <= 0 {
		cfg.InsightRetention = defaults.InsightRetention
	}
	if cfg.MaxInsights <= 0 {
		cfg.MaxInsights = defaults.MaxInsights
	}
	if deps.Clock == nil {
		deps.Clock = utils.SystemClock{}
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewUUID
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	e := &Engine{
		userID:   userID,
		cfg:      cfg,
		activity: deps.Activity,
		streaks:  deps.Streaks,
		repo:     deps.Repo,
		clock:    deps.Clock,
		newID:    deps.IDs,
		logger:   deps.Logger.With(zap.String("user_id", userID)),
	}
	e.loop = schedule.NewLoop("insight-analysis", cfg.AnalysisInterval, e.Tick, e.logger)
	return e
}

func (e *Engine) Start(ctx context.Context) bool {
	return e.loop.Start(context.WithoutCancel(ctx))
}

func (e *Engine) Stop() bool {
	return e.loop.Stop()
}

func (e *Engine) Running() bool {
	return e.loop.Running()
}

func (e *Engine) Tick(ctx context.Context) {
	e.Analyze(ctx)
}

// Analyze runs one analysis pass: context, rules, pruning and persistence.
func (e *Engine) Analyze(ctx context.Context) entity.AnalysisResult {
	state := e.CurrentContext(ctx)
	now := state.ComputedAt

	var streak *entity.StreakData
	if e.streaks != nil {
		s := e.streaks.StreakData(ctx, e.userID)
		streak = &s
	}

	insights := e.evaluateInsights(state, streak, now)
	recs := e.evaluateRecommendations(state, now)

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	insights = e.storeInsights(ctx, insights, now)
	recs = e.storeRecommendations(ctx, recs, now)

	e.logger.Debug("analysis complete",
		zap.String("activity", state.CurrentActivity),
		zap.Int("energy", state.EnergyLevel),
		zap.Int("insights", len(insights)),
		zap.Int("recommendations", len(recs)))

	return entity.AnalysisResult{Context: state, Insights: insights, Recommendations: recs}
}

// storeInsights appends fresh insights unless a same-typed one is still
// cooling down, prunes old ones and persists. It returns what was added.
func (e *Engine) storeInsights(ctx context.Context, fresh []entity.PredictiveInsight, now time.Time) []entity.PredictiveInsight {
	stored, err := e.repo.LoadInsights(ctx, e.userID)
	if err != nil {
		e.logger.Error("failed to read insights", zap.Error(err))
		return fresh
	}

	added := make([]entity.PredictiveInsight, 0, len(fresh))
	for _, in := range fresh {
		if !e.coolingDown(stored, in.Type, now) {
			added = append(added, in)
		}
	}

	cutoff := now.Add(-e.cfg.InsightRetention)
	kept := make([]entity.PredictiveInsight, 0, len(stored)+len(added))
	for _, in := range append(stored, added...) {
		if !in.CreatedAt.Before(cutoff) {
			kept = append(kept, in)
		}
	}
	if len(kept) > e.cfg.MaxInsights {
		kept = kept[len(kept)-e.cfg.MaxInsights:]
	}

	if err := e.repo.SaveInsights(ctx, e.userID, kept); err != nil {
		e.logger.Error("failed to persist insights", zap.Error(err))
	}
	return added
}

func (e *Engine) coolingDown(stored []entity.PredictiveInsight, typ entity.InsightType, now time.Time) bool {
	if e.cfg.InsightCooldown <= 0 {
		return false
	}
	for _, in := range stored {
		if in.Type == typ && now.Sub(in.CreatedAt) < e.cfg.InsightCooldown {
			return true
		}
	}
	return false
}

// storeRecommendations adds fresh recommendations whose type has no live
// entry, drops expired ones and persists. It returns what was added.
func (e *Engine) storeRecommendations(ctx context.Context, fresh []entity.PersonalizedRecommendation, now time.Time) []entity.PersonalizedRecommendation {
	stored, err := e.repo.LoadRecommendations(ctx, e.userID)
	if err != nil {
		e.logger.Error("failed to read recommendations", zap.Error(err))
		return fresh
	}

	live := make([]entity.PersonalizedRecommendation, 0, len(stored)+len(fresh))
	active := make(map[entity.RecommendationType]bool)
	for _, rec := range stored {
		if rec.ValidUntil.After(now) {
			live = append(live, rec)
			active[rec.Type] = true
		}
	}

	added := make([]entity.PersonalizedRecommendation, 0, len(fresh))
	for _, rec := range fresh {
		if active[rec.Type] {
			continue
		}
		live = append(live, rec)
		added = append(added, rec)
	}

	if err := e.repo.SaveRecommendations(ctx, e.userID, live); err != nil {
		e.logger.Error("failed to persist recommendations", zap.Error(err))
	}
	return added
}

// LatestInsights returns up to limit insights, newest first.
func (e *Engine) LatestInsights(ctx context.Context, limit int) []entity.PredictiveInsight {
	if limit <= 0 {
		limit = 10
	}
	stored, err := e.repo.LoadInsights(ctx, e.userID)
	if err != nil {
		e.logger.Error("failed to read insights", zap.Error(err))
		return []entity.PredictiveInsight{}
	}

	sort.SliceStable(stored, func(i, j int) bool { return stored[i].CreatedAt.After(stored[j].CreatedAt) })
	if len(stored) > limit {
		stored = stored[:limit]
	}
	if stored == nil {
		stored = []entity.PredictiveInsight{}
	}
	return stored
}

// ActiveRecommendations returns unexpired recommendations, highest priority
// first and newest first within a priority.
func (e *Engine) ActiveRecommendations(ctx context.Context) []entity.PersonalizedRecommendation {
	stored, err := e.repo.LoadRecommendations(ctx, e.userID)
	if err != nil {
		e.logger.Error("failed to read recommendations", zap.Error(err))
		return []entity.PersonalizedRecommendation{}
	}

	now := e.clock.Now()
	out := make([]entity.PersonalizedRecommendation, 0, len(stored))
	for _, rec := range stored {
		if rec.ValidUntil.After(now) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
