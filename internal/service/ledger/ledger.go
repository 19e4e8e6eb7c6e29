package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"go.uber.org/zap"
)

const (
	MaxActionsPerUser = 1000
	DefaultIntegrity  = 100
)

var (
	ErrUnknownAction = errors.New("unknown action kind")
	ErrMissingUser   = errors.New("user id is required")
)

type Deps struct {
	Repo   repository.ActionRepository
	Clock  utils.Clock
	IDs    utils.IDGenerator
	Logger *zap.Logger
}

// Ledger is the append-only action log shared by all users.
type Ledger struct {
	repo   repository.ActionRepository
	clock  utils.Clock
	newID  utils.IDGenerator
	logger *zap.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func New(deps Deps) *Ledger {
	if deps.Clock == nil {
		deps.Clock = utils.SystemClock{}
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewUUID
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Ledger{
		repo:   deps.Repo,
		clock:  deps.Clock,
		newID:  deps.IDs,
		logger: deps.Logger,
		users:  make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.users[userID]
	if !ok {
		m = &sync.Mutex{}
		l.users[userID] = m
	}
	return m
}

// LogAction appends an action and applies its integrity impact once. Only
// invalid input is reported; storage failures are logged.
func (l *Ledger) LogAction(ctx context.Context, userID string, req entity.LogActionRequest) (entity.UserAction, error) {
	if userID == "" {
		return entity.UserAction{}, ErrMissingUser
	}
	if !req.Kind.Valid() {
		return entity.UserAction{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Kind)
	}

	action := entity.UserAction{
		ID:              l.newID(),
		UserID:          userID,
		Kind:            req.Kind,
		Timestamp:       l.clock.Now(),
		TaskID:          req.TaskID,
		Metadata:        req.Metadata,
		IntegrityImpact: req.IntegrityImpact,
	}
	logger := l.logger.With(zap.String("user_id", userID), zap.String("action", string(req.Kind)))

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	actions, err := l.repo.LoadActions(ctx, userID)
	if err != nil {
		logger.Error("failed to read action log", zap.Error(err))
		return action, nil
	}

	actions = append(actions, action)
	if len(actions) > MaxActionsPerUser {
		actions = actions[len(actions)-MaxActionsPerUser:]
	}
	if err := l.repo.SaveActions(ctx, userID, actions); err != nil {
		logger.Error("failed to persist action log", zap.Error(err))
		return action, nil
	}

	if req.IntegrityImpact != nil {
		l.applyIntegrity(ctx, logger, userID, *req.IntegrityImpact)
	}

	logger.Debug("action logged", zap.String("action_id", action.ID))
	return action, nil
}

func (l *Ledger) applyIntegrity(ctx context.Context, logger *zap.Logger, userID string, delta int) {
	stored, err := l.repo.LoadIntegrity(ctx, userID)
	if err != nil {
		logger.Error("failed to read integrity score", zap.Error(err))
		return
	}

	score := DefaultIntegrity
	if stored != nil {
		score = *stored
	}
	score = utils.ClampScore(float64(score) + float64(delta))

	if err := l.repo.SaveIntegrity(ctx, userID, score); err != nil {
		logger.Error("failed to persist integrity score", zap.Error(err))
	}
}

func (l *Ledger) IntegrityScore(ctx context.Context, userID string) entity.IntegrityScore {
	result := entity.IntegrityScore{UserID: userID, Score: DefaultIntegrity}
	stored, err := l.repo.LoadIntegrity(ctx, userID)
	if err != nil {
		l.logger.Error("failed to read integrity score", zap.String("user_id", userID), zap.Error(err))
		return result
	}
	if stored != nil {
		result.Score = *stored
	}
	return result
}

// Actions returns the user's actions newest first, optionally filtered by kind.
func (l *Ledger) Actions(ctx context.Context, userID string, kind entity.ActionKind) []entity.UserAction {
	actions := l.load(ctx, userID)
	out := make([]entity.UserAction, 0, len(actions))
	for i := len(actions) - 1; i >= 0; i-- {
		if kind == "" || actions[i].Kind == kind {
			out = append(out, actions[i])
		}
	}
	return out
}

func (l *Ledger) load(ctx context.Context, userID string) []entity.UserAction {
	actions, err := l.repo.LoadActions(ctx, userID)
	if err != nil {
		l.logger.Error("failed to read action log", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return actions
}

// AnalyticsData summarizes the last days of actions.
func (l *Ledger) AnalyticsData(ctx context.Context, userID string, days int) entity.AnalyticsData {
	if days <= 0 {
		days = 7
	}
	now := l.clock.Now()
	since := now.AddDate(0, 0, -days)

	data := entity.AnalyticsData{Days: days, IntegrityPercentage: 100}
	var completionMinutes []float64

	for _, a := range l.load(ctx, userID) {
		if a.Timestamp.Before(since) || a.Timestamp.After(now) {
			continue
		}
		switch a.Kind {
		case entity.ActionTaskCreated:
			data.TasksCreated++
		case entity.ActionHonestCompletion:
			data.TasksCompleted++
			data.HonestCompletions++
		case entity.ActionDishonestCompletion:
			data.TasksCompleted++
			data.DishonestCompletions++
		case entity.ActionFocusCompleted:
			data.FocusSessions++
			if minutes, ok := metaNumber(a.Metadata, entity.MetaFocusMinutes); ok {
				data.TotalFocusMinutes += minutes
			}
		case entity.ActionProcrastinationDetected:
			data.ProcrastinationEvents++
		}
		if a.Kind.IsCompletion() {
			if minutes, ok := metaNumber(a.Metadata, entity.MetaCompletionMinutes); ok {
				completionMinutes = append(completionMinutes, minutes)
			}
		}
	}

	data.TotalFocusMinutes = utils.RoundToTwoDecimals(data.TotalFocusMinutes)
	if len(completionMinutes) > 0 {
		var sum float64
		for _, m := range completionMinutes {
			sum += m
		}
		data.AverageCompletionMinutes = utils.RoundToTwoDecimals(sum / float64(len(completionMinutes)))
	}
	if completions := data.HonestCompletions + data.DishonestCompletions; completions > 0 {
		data.IntegrityPercentage = utils.ClampScore(float64(data.HonestCompletions) / float64(completions) * 100)
	}
	return data
}

// StreakData counts runs of calendar days (in the clock's location) with at
// least one completion.
func (l *Ledger) StreakData(ctx context.Context, userID string) entity.StreakData {
	now := l.clock.Now()
	loc := now.Location()

	days := make(map[string]time.Time)
	for _, a := range l.load(ctx, userID) {
		if !a.Kind.IsCompletion() {
			continue
		}
		day := utils.StartOfDay(a.Timestamp.In(loc))
		days[utils.DateKey(day)] = day
	}
	return streakFromDays(days, utils.StartOfDay(now))
}

func streakFromDays(days map[string]time.Time, today time.Time) entity.StreakData {
	var data entity.StreakData
	if len(days) == 0 {
		return data
	}

	ordered := make([]time.Time, 0, len(days))
	for _, d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	run := 0
	for i, d := range ordered {
		if i > 0 && sameDay(ordered[i-1].AddDate(0, 0, 1), d) {
			run++
		} else {
			run = 1
		}
		if run > data.LongestStreak {
			data.LongestStreak = run
		}
	}

	last := ordered[len(ordered)-1]
	data.LastCompletionDate = utils.DateKey(last)
	data.CompletedToday = sameDay(last, today)
	if data.CompletedToday {
		data.CurrentStreak = run
	}
	return data
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func metaNumber(meta map[string]any, key string) (float64, bool) {
	switch v := meta[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
