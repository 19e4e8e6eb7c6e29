package focus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrSessionActive    = errors.New("a focus session is already being tracked")
	ErrMissingSessionID = errors.New("session id is required")
)

// ActionLogger receives focus lifecycle and distraction actions.
type ActionLogger interface {
	LogAction(ctx context.Context, userID string, req entity.LogActionRequest) (entity.UserAction, error)
}

type Deps struct {
	Repo    repository.FocusRepository
	Signals SignalSource
	Actions ActionLogger
	Clock   utils.Clock
	IDs     utils.IDGenerator
	Logger  *zap.Logger
}

// Tracker follows a single live focus session:
// idle -> tracking -> (paused <-> tracking) -> idle.
type Tracker struct {
	repo    repository.FocusRepository
	signals SignalSource
	actions ActionLogger
	clock   utils.Clock
	newID   utils.IDGenerator
	logger  *zap.Logger

	mu           sync.Mutex
	state        entity.FocusState
	ctx          context.Context
	sessionID    string
	userID       string
	taskID       string
	startedAt    time.Time
	pausedTotal  time.Duration
	pauseStart   time.Time
	distractions int
	pageHidden   bool
	unsubscribe  func()
}

func NewTracker(deps Deps) *Tracker {
	if deps.Clock == nil {
		deps.Clock = utils.SystemClock{}
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewUUID
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Tracker{
		repo:    deps.Repo,
		signals: deps.Signals,
		actions: deps.Actions,
		clock:   deps.Clock,
		newID:   deps.IDs,
		logger:  deps.Logger,
		state:   entity.FocusIdle,
	}
}

// StartTracking begins a session. Only valid while idle.
func (t *Tracker) StartTracking(ctx context.Context, sessionID, userID, taskID string) error {
	if sessionID == "" {
		return ErrMissingSessionID
	}

	var unsubscribe func()
	if t.signals != nil {
		unsubscribe = t.signals.Subscribe(t.handleSignal)
	}

	t.mu.Lock()
	if t.state != entity.FocusIdle {
		t.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		return ErrSessionActive
	}
	t.state = entity.FocusTracking
	t.ctx = context.WithoutCancel(ctx)
	t.sessionID = sessionID
	t.userID = userID
	t.taskID = taskID
	t.startedAt = t.clock.Now()
	t.pausedTotal = 0
	t.pauseStart = time.Time{}
	t.distractions = 0
	t.pageHidden = false
	t.unsubscribe = unsubscribe
	t.mu.Unlock()

	t.logger.Info("focus session started", zap.String("session_id", sessionID), zap.String("task_id", taskID))
	t.logAction(ctx, userID, entity.LogActionRequest{
		Kind:     entity.ActionFocusStarted,
		TaskID:   taskID,
		Metadata: map[string]any{entity.MetaSessionID: sessionID},
	})
	return nil
}

// StopTracking ends the session, flushing an open pause first. Calling it
// when no session is active returns zero stats.
func (t *Tracker) StopTracking(ctx context.Context) entity.FocusStats {
	t.mu.Lock()
	if t.state != entity.FocusTracking && t.state != entity.FocusPaused {
		t.mu.Unlock()
		return entity.FocusStats{State: entity.FocusIdle}
	}

	now := t.clock.Now()
	if !t.pauseStart.IsZero() {
		t.pausedTotal += now.Sub(t.pauseStart)
		t.pauseStart = time.Time{}
	}
	stats := t.statsLocked(now)
	stats.State = entity.FocusStopped

	record := entity.FocusSessionRecord{
		ID:              t.newID(),
		SessionID:       t.sessionID,
		UserID:          t.userID,
		TaskID:          t.taskID,
		StartedAt:       t.startedAt,
		EndedAt:         now,
		TotalDuration:   stats.TotalDuration,
		FocusTime:       stats.FocusTime,
		DistractionTime: stats.DistractionTime,
		Distractions:    stats.Distractions,
		FocusRatio:      stats.FocusRatio,
	}
	unsubscribe := t.unsubscribe
	t.unsubscribe = nil
	t.state = entity.FocusIdle
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	if t.repo != nil {
		if err := t.repo.AppendSession(ctx, record.UserID, record); err != nil {
			t.logger.Error("failed to persist focus session", zap.String("session_id", record.SessionID), zap.Error(err))
		}
	}

	t.logger.Info("focus session stopped",
		zap.String("session_id", record.SessionID),
		zap.Int64("focus_seconds", record.FocusTime),
		zap.Int("distractions", record.Distractions))
	t.logAction(ctx, record.UserID, entity.LogActionRequest{
		Kind:   entity.ActionFocusCompleted,
		TaskID: record.TaskID,
		Metadata: map[string]any{
			entity.MetaSessionID:    record.SessionID,
			entity.MetaFocusMinutes: utils.RoundToTwoDecimals(float64(record.FocusTime) / 60),
			"distractions":          record.Distractions,
		},
	})
	return stats
}

// CurrentStats snapshots the live session without changing it.
func (t *Tracker) CurrentStats() entity.FocusStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == entity.FocusIdle {
		return entity.FocusStats{State: entity.FocusIdle}
	}
	return t.statsLocked(t.clock.Now())
}

func (t *Tracker) State() entity.FocusState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Sessions lists stored session summaries for userID, newest first.
func (t *Tracker) Sessions(ctx context.Context, userID string) []entity.FocusSessionRecord {
	if t.repo == nil {
		return []entity.FocusSessionRecord{}
	}
	sessions, err := t.repo.ListSessions(ctx, userID)
	if err != nil {
		t.logger.Error("failed to read focus sessions", zap.Error(err))
		return []entity.FocusSessionRecord{}
	}
	return sessions
}

func (t *Tracker) handleSignal(signal entity.FocusSignal) {
	if signal == entity.SignalBeforeUnload {
		t.mu.Lock()
		ctx := t.ctx
		t.mu.Unlock()
		if ctx == nil {
			ctx = context.Background()
		}
		t.StopTracking(ctx)
		return
	}

	t.mu.Lock()
	now := t.clock.Now()
	paused := false
	switch signal {
	case entity.SignalPageHidden:
		t.pageHidden = true
		paused = t.pauseLocked(now)
	case entity.SignalPageVisible:
		t.pageHidden = false
		t.resumeLocked(now)
	case entity.SignalWindowBlur:
		if !t.pageHidden {
			paused = t.pauseLocked(now)
		}
	case entity.SignalWindowFocus:
		if !t.pageHidden {
			t.resumeLocked(now)
		}
	}
	ctx, userID, taskID, sessionID, distractions := t.ctx, t.userID, t.taskID, t.sessionID, t.distractions
	t.mu.Unlock()

	if paused {
		t.logger.Debug("focus session paused", zap.String("session_id", sessionID), zap.String("signal", string(signal)))
		t.logAction(ctx, userID, entity.LogActionRequest{
			Kind:   entity.ActionProcrastinationDetected,
			TaskID: taskID,
			Metadata: map[string]any{
				entity.MetaSessionID: sessionID,
				"signal":             string(signal),
				"distractions":       distractions,
			},
		})
	}
}

func (t *Tracker) pauseLocked(now time.Time) bool {
	if t.state != entity.FocusTracking {
		return false
	}
	t.state = entity.FocusPaused
	t.pauseStart = now
	t.distractions++
	return true
}

func (t *Tracker) resumeLocked(now time.Time) {
	if t.state != entity.FocusPaused {
		return
	}
	t.pausedTotal += now.Sub(t.pauseStart)
	t.pauseStart = time.Time{}
	t.state = entity.FocusTracking
}

func (t *Tracker) statsLocked(now time.Time) entity.FocusStats {
	paused := t.pausedTotal
	if !t.pauseStart.IsZero() {
		paused += now.Sub(t.pauseStart)
	}

	total := int64(now.Sub(t.startedAt) / time.Second)
	distraction := int64(paused / time.Second)
	if distraction > total {
		distraction = total
	}
	focus := total - distraction

	var ratio float64
	if total > 0 {
		ratio = utils.RoundToTwoDecimals(float64(focus) / float64(total))
	}

	startedAt := t.startedAt
	return entity.FocusStats{
		SessionID:       t.sessionID,
		UserID:          t.userID,
		TaskID:          t.taskID,
		State:           t.state,
		StartedAt:       &startedAt,
		TotalDuration:   total,
		FocusTime:       focus,
		DistractionTime: distraction,
		Distractions:    t.distractions,
		IsPaused:        !t.pauseStart.IsZero(),
		FocusRatio:      ratio,
	}
}

// logAction forwards to the ledger when a user is bound; failures are logged.
func (t *Tracker) logAction(ctx context.Context, userID string, req entity.LogActionRequest) {
	if t.actions == nil || userID == "" {
		return
	}
	if _, err := t.actions.LogAction(ctx, userID, req); err != nil {
		t.logger.Warn("failed to log focus action", zap.String("action", string(req.Kind)), zap.Error(err))
	}
}
