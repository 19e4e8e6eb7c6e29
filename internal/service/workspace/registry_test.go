package workspace

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/internal/service/activity"
	"github.com/dinerozz/nudge-engine/internal/service/insight"
	"github.com/dinerozz/nudge-engine/internal/service/ledger"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	registry *Registry
	store    *repository.MemoryStore
	ledger   *ledger.Ledger
	clock    *utils.ManualClock
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T, synthetic bool) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	clock := utils.NewManualClock(start)
	store := repository.NewMemoryStore()
	l := ledger.New(ledger.Deps{
		Repo:  repository.NewActionRepository(store),
		Clock: clock,
		IDs:   utils.SequentialIDs("act"),
	})

	// Long intervals keep the background loops from ticking during a test.
	cfg := Config{
		Activity:          activity.Config{SamplingInterval: time.Hour},
		Insight:           insight.Config{AnalysisInterval: time.Hour},
		SyntheticActivity: synthetic,
	}
	r := NewRegistry(cfg, Deps{
		Store:  store,
		Ledger: l,
		Clock:  clock,
		IDs:    utils.SequentialIDs("id"),
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Logger: zap.New(core),
	})
	t.Cleanup(func() { r.Close(context.Background()) })
	return &fixture{registry: r, store: store, ledger: l, clock: clock, logs: logs}
}

func TestGetReturnsSameWorkspace(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	a, err := f.registry.Get(ctx, "u1")
	require.NoError(t, err)
	b, err := f.registry.Get(ctx, "u1")
	require.NoError(t, err)
	c, err := f.registry.Get(ctx, "u2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, f.registry.Len())
	assert.True(t, a.Insights.Running())
	assert.False(t, a.Collector.IsMonitoring())
	assert.Equal(t, 2, f.logs.FilterMessage("workspace created").Len())
}

func TestGetRequiresUser(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.registry.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestGetRestoresPermissions(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	repo := repository.NewActivityRepository(f.store)
	require.NoError(t, repo.SavePermissions(ctx, "u1", entity.MonitoringPermissions{BrowserTracking: true}))

	ws, err := f.registry.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ws.Collector.IsMonitoring())
	assert.True(t, ws.Collector.Permissions(ctx).BrowserTracking)
}

func TestIngestedEventsReachCollector(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	ws, err := f.registry.Get(ctx, "u1")
	require.NoError(t, err)
	granted := true
	ws.Collector.UpdatePermissions(ctx, entity.PermissionsUpdate{BrowserTracking: &granted})

	f.registry.Hub().Push("u1", entity.PermissionBrowserTracking, entity.ActivityEvent{
		Timestamp:  start.Add(-time.Minute),
		SourceType: entity.SourcePassiveDevice,
		Category:   entity.CategoryProductive,
		Duration:   60,
		Site:       "github.com",
	})
	f.registry.Hub().Push("u1", entity.PermissionScreenTime, entity.ActivityEvent{
		Timestamp:  start.Add(-time.Minute),
		SourceType: entity.SourcePassiveDevice,
		Category:   entity.CategoryNeutral,
		Duration:   60,
	})
	ws.Collector.Tick(ctx)

	events := ws.Collector.Activities(ctx, nil)
	require.Len(t, events, 1)
	assert.Equal(t, "github.com", events[0].Site)
	assert.Equal(t, "u1", events[0].UserID)
	assert.Equal(t, 1, f.registry.Hub().Pending("u1", entity.PermissionScreenTime))
}

func TestSyntheticSourcesProduceActivity(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	ws, err := f.registry.Get(ctx, "u1")
	require.NoError(t, err)
	granted := true
	ws.Collector.UpdatePermissions(ctx, entity.PermissionsUpdate{ApplicationTracking: &granted})
	ws.Collector.Tick(ctx)

	assert.NotEmpty(t, ws.Collector.Activities(ctx, nil))
}

func TestFocusSessionIsLoggedToLedger(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	ws, err := f.registry.Get(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, ws.Tracker.StartTracking(ctx, "s1", "u1", "t1"))

	f.clock.Advance(20 * time.Minute)
	stats := ws.Tracker.StopTracking(ctx)
	assert.Equal(t, int64(20*60), stats.FocusTime)

	assert.Len(t, f.ledger.Actions(ctx, "u1", entity.ActionFocusStarted), 1)
	assert.Len(t, f.ledger.Actions(ctx, "u1", entity.ActionFocusCompleted), 1)
}

func TestEvictIdleWorkspaces(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	idle, err := f.registry.Get(ctx, "idle")
	require.NoError(t, err)
	granted := true
	idle.Collector.UpdatePermissions(ctx, entity.PermissionsUpdate{ScreenTime: &granted})
	f.registry.Hub().Push("idle", entity.PermissionScreenTime, entity.ActivityEvent{Timestamp: start, Category: entity.CategoryNeutral, Duration: 1})

	focused, err := f.registry.Get(ctx, "focused")
	require.NoError(t, err)
	require.NoError(t, focused.Tracker.StartTracking(ctx, "s1", "focused", ""))

	f.clock.Advance(DefaultIdleTimeout - time.Minute)
	_, err = f.registry.Get(ctx, "recent")
	require.NoError(t, err)
	assert.Zero(t, f.registry.EvictIdle(ctx))

	f.clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, f.registry.EvictIdle(ctx))
	assert.Equal(t, 2, f.registry.Len())
	assert.False(t, idle.Collector.IsMonitoring())
	assert.False(t, idle.Insights.Running())
	assert.Zero(t, f.registry.Hub().Pending("idle", entity.PermissionScreenTime))
	assert.Equal(t, entity.FocusTracking, focused.Tracker.State())
	assert.Equal(t, 1, f.logs.FilterMessage("idle workspaces evicted").Len())

	again, err := f.registry.Get(ctx, "idle")
	require.NoError(t, err)
	assert.NotSame(t, idle, again)
	assert.True(t, again.Collector.Permissions(ctx).ScreenTime)
	assert.True(t, again.Collector.IsMonitoring())
}

func TestCloseFlushesAndStops(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	ws, err := f.registry.Get(ctx, "u1")
	require.NoError(t, err)
	granted := true
	ws.Collector.UpdatePermissions(ctx, entity.PermissionsUpdate{IdleDetection: &granted})
	require.NoError(t, ws.Tracker.StartTracking(ctx, "s1", "u1", ""))
	f.clock.Advance(5 * time.Minute)

	f.registry.Close(ctx)
	f.registry.Close(ctx)

	assert.False(t, ws.Collector.IsMonitoring())
	assert.False(t, ws.Insights.Running())
	assert.Equal(t, entity.FocusIdle, ws.Tracker.State())
	require.Len(t, ws.Tracker.Sessions(ctx, "u1"), 1)
	assert.Equal(t, 1, f.logs.FilterMessage("workspaces closed").Len())

	_, err = f.registry.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrClosed)
}
