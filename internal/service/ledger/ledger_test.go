package ledger

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var day0 = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func newLedger(t *testing.T) (*Ledger, *utils.ManualClock) {
	t.Helper()
	clock := utils.NewManualClock(day0)
	return New(Deps{
		Repo:  repository.NewActionRepository(repository.NewMemoryStore()),
		Clock: clock,
		IDs:   utils.SequentialIDs("act"),
	}), clock
}

func logKind(t *testing.T, l *Ledger, kind entity.ActionKind) {
	t.Helper()
	_, err := l.LogAction(context.Background(), "u1", entity.LogActionRequest{Kind: kind})
	require.NoError(t, err)
}

func TestDishonestCompletionLowersIntegrity(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	assert.Equal(t, 100, l.IntegrityScore(ctx, "u1").Score)

	action, err := l.LogAction(ctx, "u1", entity.LogActionRequest{
		Kind:            entity.ActionDishonestCompletion,
		TaskID:          "t1",
		IntegrityImpact: intPtr(-5),
	})
	require.NoError(t, err)
	assert.Equal(t, "act-1", action.ID)

	assert.Equal(t, 95, l.IntegrityScore(ctx, "u1").Score)
	assert.Equal(t, 100, l.IntegrityScore(ctx, "u2").Score)
}

func TestIntegrityIsClamped(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: entity.ActionHonestCompletion, IntegrityImpact: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, 100, l.IntegrityScore(ctx, "u1").Score)

	_, err = l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: entity.ActionDishonestCompletion, IntegrityImpact: intPtr(-250)})
	require.NoError(t, err)
	assert.Equal(t, 0, l.IntegrityScore(ctx, "u1").Score)
}

func TestIntegrityExtremeImpacts(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: entity.ActionHonestCompletion, IntegrityImpact: intPtr(math.MaxInt)})
	require.NoError(t, err)
	assert.Equal(t, 100, l.IntegrityScore(ctx, "u1").Score)

	_, err = l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: entity.ActionDishonestCompletion, IntegrityImpact: intPtr(math.MinInt)})
	require.NoError(t, err)
	assert.Equal(t, 0, l.IntegrityScore(ctx, "u1").Score)

	_, err = l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: entity.ActionHonestCompletion, IntegrityImpact: intPtr(math.MaxInt)})
	require.NoError(t, err)
	assert.Equal(t, 100, l.IntegrityScore(ctx, "u1").Score)
}

func TestLogActionValidation(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: "task_deleted"})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = l.LogAction(ctx, "", entity.LogActionRequest{Kind: entity.ActionTaskCreated})
	assert.ErrorIs(t, err, ErrMissingUser)

	assert.Empty(t, l.Actions(ctx, "u1", ""))
}

func TestActionLogIsCapped(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	for i := 0; i < MaxActionsPerUser+5; i++ {
		logKind(t, l, entity.ActionTaskCreated)
	}

	actions := l.Actions(ctx, "u1", "")
	require.Len(t, actions, MaxActionsPerUser)
	assert.Equal(t, "act-1005", actions[0].ID)
	assert.Equal(t, "act-6", actions[len(actions)-1].ID)
}

func TestAnalyticsData(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	clock.Set(day0.AddDate(0, 0, -10))
	logKind(t, l, entity.ActionHonestCompletion)

	clock.Set(day0)
	logKind(t, l, entity.ActionTaskCreated)
	logKind(t, l, entity.ActionProcrastinationDetected)
	for _, minutes := range []float64{30, 60} {
		_, err := l.LogAction(ctx, "u1", entity.LogActionRequest{
			Kind:     entity.ActionHonestCompletion,
			Metadata: map[string]any{entity.MetaCompletionMinutes: minutes},
		})
		require.NoError(t, err)
	}
	logKind(t, l, entity.ActionDishonestCompletion)
	_, err := l.LogAction(ctx, "u1", entity.LogActionRequest{
		Kind:     entity.ActionFocusCompleted,
		Metadata: map[string]any{entity.MetaFocusMinutes: 24.5},
	})
	require.NoError(t, err)

	data := l.AnalyticsData(ctx, "u1", 7)

	assert.Equal(t, 1, data.TasksCreated)
	assert.Equal(t, 3, data.TasksCompleted)
	assert.Equal(t, 2, data.HonestCompletions)
	assert.Equal(t, 1, data.DishonestCompletions)
	assert.Equal(t, 1, data.FocusSessions)
	assert.Equal(t, 1, data.ProcrastinationEvents)
	assert.Equal(t, 24.5, data.TotalFocusMinutes)
	assert.Equal(t, 45.0, data.AverageCompletionMinutes)
	assert.Equal(t, 67, data.IntegrityPercentage)
}

func TestAnalyticsDataWithoutCompletions(t *testing.T) {
	l, _ := newLedger(t)
	data := l.AnalyticsData(context.Background(), "u1", 0)
	assert.Equal(t, 7, data.Days)
	assert.Equal(t, 100, data.IntegrityPercentage)
}

func TestStreakConsecutiveDays(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	for d := 0; d < 3; d++ {
		clock.Set(day0.AddDate(0, 0, d))
		logKind(t, l, entity.ActionHonestCompletion)
	}

	streak := l.StreakData(ctx, "u1")
	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 3, streak.LongestStreak)
	assert.True(t, streak.CompletedToday)
	assert.Equal(t, "2026-03-04", streak.LastCompletionDate)
}

func TestStreakBrokenByGap(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	clock.Set(day0)
	logKind(t, l, entity.ActionHonestCompletion)
	clock.Set(day0.AddDate(0, 0, 2))
	logKind(t, l, entity.ActionHonestCompletion)

	streak := l.StreakData(ctx, "u1")
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)
}

func TestStreakNeedsCompletionToday(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	for d := 0; d < 4; d++ {
		clock.Set(day0.AddDate(0, 0, d))
		logKind(t, l, entity.ActionDishonestCompletion)
		logKind(t, l, entity.ActionTaskCreated)
	}
	clock.Set(day0.AddDate(0, 0, 4))

	streak := l.StreakData(ctx, "u1")
	assert.Equal(t, 0, streak.CurrentStreak)
	assert.Equal(t, 4, streak.LongestStreak)
	assert.False(t, streak.CompletedToday)
}

func TestAchievements(t *testing.T) {
	l, clock := newLedger(t)
	ctx := context.Background()

	byID := func() map[string]entity.Achievement {
		out := make(map[string]entity.Achievement)
		for _, a := range l.Achievements(ctx, "u1") {
			out[a.ID] = a
		}
		return out
	}

	assert.False(t, byID()["first_completion"].Earned)

	for d := 0; d < royaltyStreakTarget; d++ {
		clock.Set(day0.AddDate(0, 0, d))
		logKind(t, l, entity.ActionHonestCompletion)
	}

	got := byID()
	assert.True(t, got["first_completion"].Earned)
	assert.True(t, got["week_streak"].Earned)
	assert.Equal(t, weekStreakTarget, got["week_streak"].Progress)
	assert.True(t, got["honest_worker"].Earned)
	assert.False(t, got["focus_regular"].Earned)
	assert.True(t, got["productivity_royalty"].Earned)

	_, err := l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: entity.ActionDishonestCompletion, IntegrityImpact: intPtr(-10)})
	require.NoError(t, err)
	got = byID()
	assert.False(t, got["productivity_royalty"].Earned)
	assert.True(t, got["honest_worker"].Earned)
}

type failingActions struct{ repository.ActionRepository }

func (failingActions) LoadActions(context.Context, string) ([]entity.UserAction, error) {
	return nil, errors.New("timeout")
}

func (failingActions) LoadIntegrity(context.Context, string) (*int, error) {
	return nil, errors.New("timeout")
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	l := New(Deps{Repo: failingActions{}, Clock: utils.NewManualClock(day0), Logger: zap.New(core)})
	ctx := context.Background()

	_, err := l.LogAction(ctx, "u1", entity.LogActionRequest{Kind: entity.ActionHonestCompletion, IntegrityImpact: intPtr(-5)})
	assert.NoError(t, err)
	assert.Equal(t, 100, l.IntegrityScore(ctx, "u1").Score)
	assert.Empty(t, l.Actions(ctx, "u1", ""))
	assert.Equal(t, entity.StreakData{}, l.StreakData(ctx, "u1"))

	assert.GreaterOrEqual(t, logs.FilterMessage("failed to read action log").Len(), 2)
}
