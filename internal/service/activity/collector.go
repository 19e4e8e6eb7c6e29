package activity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/internal/schedule"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"go.uber.org/zap"
)

var ErrInvalidRange = errors.New("invalid time range: end is before start")

// Source produces activity events for one permission kind.
type Source interface {
	Kind() entity.PermissionKind
	Sample(ctx context.Context, userID string, now time.Time) ([]entity.ActivityEvent, error)
}

type PermissionsListener func(entity.MonitoringPermissions)

type Config struct {
	SamplingInterval time.Duration
	Retention        time.Duration
	MaxEvents        int
	SourceTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		SamplingInterval: 30 * time.Second,
		Retention:        7 * 24 * time.Hour,
		MaxEvents:        10000,
		SourceTimeout:    10 * time.Second,
	}
}

type Deps struct {
	Repo    repository.ActivityRepository
	Sources []Source
	Clock   utils.Clock
	IDs     utils.IDGenerator
	Logger  *zap.Logger
}

// Collector owns one user's monitoring permissions and activity history.
type Collector struct {
	userID  string
	cfg     Config
	repo    repository.ActivityRepository
	sources []Source
	clock   utils.Clock
	newID   utils.IDGenerator
	logger  *zap.Logger
	loop    *schedule.Loop

	mu           sync.Mutex
	loaded       bool
	permissions  entity.MonitoringPermissions
	listeners    map[int]PermissionsListener
	nextListener int

	// writeMu serializes load-append-save cycles on the event store.
	writeMu sync.Mutex
}

func NewCollector(userID string, cfg Config, deps Deps) *Collector {
	if deps.Clock == nil {
		deps.Clock = utils.SystemClock{}
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewUUID
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if cfg.SamplingInterval <= 0 {
		cfg.SamplingInterval = defaults.SamplingInterval
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaults.Retention
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = defaults.MaxEvents
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaults.SourceTimeout
	}

	c := &Collector{
		userID:    userID,
		cfg:       cfg,
		repo:      deps.Repo,
		sources:   deps.Sources,
		clock:     deps.Clock,
		newID:     deps.IDs,
		logger:    deps.Logger.With(zap.String("user_id", userID)),
		listeners: make(map[int]PermissionsListener),
	}
	c.loop = schedule.NewLoop("activity-sampling", cfg.SamplingInterval, c.Tick, c.logger)
	return c
}

func (c *Collector) UserID() string {
	return c.userID
}

// Restore loads persisted permissions and resumes monitoring if any grant is set.
func (c *Collector) Restore(ctx context.Context) {
	c.mu.Lock()
	c.ensureLoaded(ctx)
	active := c.permissions.Any()
	c.mu.Unlock()

	if active {
		c.startMonitoring(ctx)
	}
}

func (c *Collector) Permissions(ctx context.Context) entity.MonitoringPermissions {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)
	return c.permissions
}

// UpdatePermissions merges update into the current grants, persists them,
// notifies listeners and then starts or stops sampling.
func (c *Collector) UpdatePermissions(ctx context.Context, update entity.PermissionsUpdate) entity.MonitoringPermissions {
	c.mu.Lock()
	c.ensureLoaded(ctx)
	c.permissions = c.permissions.Merge(update)
	c.permissions.LastUpdated = c.clock.Now()
	permissions := c.permissions
	listeners := make([]PermissionsListener, 0, len(c.listeners))
	for _, id := range sortedKeys(c.listeners) {
		listeners = append(listeners, c.listeners[id])
	}
	c.mu.Unlock()

	if err := c.repo.SavePermissions(ctx, c.userID, permissions); err != nil {
		c.logger.Error("failed to persist permissions", zap.Error(err))
	}

	for _, listener := range listeners {
		listener(permissions)
	}

	if permissions.Any() {
		c.startMonitoring(ctx)
	} else {
		c.StopMonitoring()
	}
	return permissions
}

// OnPermissionsChange registers fn and returns a func that removes it.
func (c *Collector) OnPermissionsChange(fn PermissionsListener) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Collector) IsMonitoring() bool {
	return c.loop.Running()
}

func (c *Collector) Status(ctx context.Context) entity.MonitoringStatus {
	return entity.MonitoringStatus{
		Active:      c.IsMonitoring(),
		Permissions: c.Permissions(ctx),
	}
}

// StopMonitoring cancels the sampling loop. Safe to call repeatedly.
func (c *Collector) StopMonitoring() bool {
	if c.loop.Stop() {
		c.logger.Info("activity monitoring stopped")
		return true
	}
	return false
}

func (c *Collector) startMonitoring(ctx context.Context) {
	if c.loop.Start(context.WithoutCancel(ctx)) {
		c.logger.Info("activity monitoring started", zap.Duration("interval", c.cfg.SamplingInterval))
	}
}

// Tick samples every granted source once. Each source runs independently
// and records its own events; a failing or slow source affects only itself.
func (c *Collector) Tick(ctx context.Context) {
	permissions := c.Permissions(ctx)
	now := c.clock.Now()

	var wg sync.WaitGroup
	for _, source := range c.sources {
		if !permissions.Granted(source.Kind()) {
			continue
		}
		wg.Add(1)
		go func(source Source) {
			defer wg.Done()
			events, err := c.sample(ctx, source, now)
			if err != nil {
				c.logger.Warn("activity source failed", zap.String("source", string(source.Kind())), zap.Error(err))
				return
			}
			if len(events) > 0 {
				c.Record(ctx, events...)
			}
		}(source)
	}
	wg.Wait()
}

type sampleResult struct {
	events []entity.ActivityEvent
	err    error
}

func (c *Collector) sample(ctx context.Context, source Source, now time.Time) ([]entity.ActivityEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SourceTimeout)
	defer cancel()

	result := make(chan sampleResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- sampleResult{err: fmt.Errorf("source panicked: %v", r)}
			}
		}()
		events, err := source.Sample(ctx, c.userID, now)
		result <- sampleResult{events: events, err: err}
	}()

	select {
	case r := <-result:
		return r.events, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("sampling %s: %w", source.Kind(), ctx.Err())
	}
}

// MaxEventSeconds is the longest duration a single event may carry: the
// retention window.
func (c *Collector) MaxEventSeconds() int64 {
	return int64(c.cfg.Retention / time.Second)
}

// Record appends events to the user's history, pruning anything past the
// retention window. Storage failures are logged and the write is dropped.
func (c *Collector) Record(ctx context.Context, events ...entity.ActivityEvent) {
	valid := make([]entity.ActivityEvent, 0, len(events))
	for _, e := range events {
		if !e.Category.Valid() || e.Duration < 0 || e.Duration > c.MaxEventSeconds() {
			c.logger.Warn("dropping malformed activity event",
				zap.String("category", string(e.Category)), zap.Int64("duration", e.Duration))
			continue
		}
		if e.ID == "" {
			e.ID = c.newID()
		}
		e.UserID = c.userID
		valid = append(valid, e)
	}
	if len(valid) == 0 {
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	stored, err := c.repo.LoadEvents(ctx, c.userID)
	if err != nil {
		c.logger.Error("failed to read activity events", zap.Error(err))
		return
	}

	stored = append(stored, valid...)
	stored = c.prune(stored, c.clock.Now())

	if err := c.repo.SaveEvents(ctx, c.userID, stored); err != nil {
		c.logger.Error("failed to persist activity events", zap.Error(err))
	}
}

func (c *Collector) prune(events []entity.ActivityEvent, now time.Time) []entity.ActivityEvent {
	cutoff := now.Add(-c.cfg.Retention)
	kept := events[:0]
	for _, e := range events {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	if len(kept) > c.cfg.MaxEvents {
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Timestamp.Before(kept[j].Timestamp) })
		kept = kept[len(kept)-c.cfg.MaxEvents:]
	}
	return kept
}

// Activities returns events intersecting r (all retained events when r is
// nil), newest first.
func (c *Collector) Activities(ctx context.Context, r *entity.TimeRange) []entity.ActivityEvent {
	stored, err := c.repo.LoadEvents(ctx, c.userID)
	if err != nil {
		c.logger.Error("failed to read activity events", zap.Error(err))
		return []entity.ActivityEvent{}
	}

	out := make([]entity.ActivityEvent, 0, len(stored))
	for _, e := range stored {
		if r == nil || r.Intersects(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// CheckRange rejects ranges whose end precedes their start.
func CheckRange(r entity.TimeRange) error {
	if r.End.Before(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

func (c *Collector) ensureLoaded(ctx context.Context) {
	if c.loaded {
		return
	}

	stored, err := c.repo.LoadPermissions(ctx, c.userID)
	if err != nil {
		c.logger.Error("failed to read permissions", zap.Error(err))
		return
	}
	c.loaded = true
	if stored != nil {
		c.permissions = *stored
	}
}

func sortedKeys(m map[int]PermissionsListener) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
