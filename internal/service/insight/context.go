package insight

import (
	"context"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
)

// circadianEnergy is the baseline energy for an hour of the day.
func circadianEnergy(hour int) float64 {
	switch {
	case hour >= 9 && hour <= 11:
		return 90
	case hour >= 14 && hour <= 16:
		return 85
	case hour >= 12 && hour <= 13, hour >= 7 && hour <= 8:
		return 70
	case hour >= 17 && hour <= 19:
		return 65
	case hour >= 20 && hour <= 22:
		return 50
	}
	return 30
}

func optimalTaskType(hour int) entity.TaskType {
	switch {
	case hour >= 9 && hour <= 11:
		return entity.TaskTypeAnalytical
	case hour >= 14 && hour <= 16:
		return entity.TaskTypeCreative
	case hour >= 17 && hour <= 19:
		return entity.TaskTypeCollaborative
	case hour >= 7 && hour <= 13:
		return entity.TaskTypeAdministrative
	}
	return entity.TaskTypeRest
}

// CurrentContext summarizes the recent activity window against the wall clock.
func (e *Engine) CurrentContext(ctx context.Context) entity.ContextualState {
	now := e.clock.Now()
	window := entity.TimeRange{Start: now.Add(-e.cfg.ContextWindow), End: now}
	events := e.activity.Activities(ctx, &window)

	state := entity.ContextualState{
		CurrentActivity: entity.ActivityIdle,
		OptimalTaskType: optimalTaskType(now.Hour()),
		ComputedAt:      now,
	}
	if len(events) > 0 {
		state.CurrentActivity = string(events[0].Category)
	}

	byCategory, total := categorySeconds(events, window)
	productive := byCategory[entity.CategoryProductive]
	if total > 0 {
		state.FocusLevel = utils.ClampScore(float64(productive) / float64(total) * 100)
		state.DistractionRisk = utils.ClampScore(float64(byCategory[entity.CategoryDistracting]) / float64(total) * 100)
	}

	fatigue := 0.3 * min(1, float64(productive)/e.cfg.ContextWindow.Seconds())
	state.EnergyLevel = utils.ClampScore(circadianEnergy(now.Hour()) * (1 - fatigue))

	state.LastBreak, state.RecommendedBreakIn = e.breakTiming(ctx, now)
	return state
}

// breakTiming finds the end of the latest break in the lookback window and
// the minutes of productive work left before another break is due.
func (e *Engine) breakTiming(ctx context.Context, now time.Time) (*time.Time, int) {
	lookback := entity.TimeRange{Start: now.Add(-e.cfg.BreakLookback), End: now}
	events := e.activity.Activities(ctx, &lookback)

	var lastBreak *time.Time
	for _, ev := range events {
		if ev.Category != entity.CategoryBreak {
			continue
		}
		end := ev.End()
		if end.After(now) {
			end = now
		}
		if lastBreak == nil || end.After(*lastBreak) {
			lastBreak = &end
		}
	}

	since := lookback
	if lastBreak != nil {
		since.Start = *lastBreak
	}
	var worked int64
	for _, ev := range events {
		if ev.Category == entity.CategoryProductive {
			worked += overlapSeconds(ev, since)
		}
	}

	left := e.cfg.BreakThreshold - time.Duration(worked)*time.Second
	if left < 0 {
		left = 0
	}
	return lastBreak, int(left / time.Minute)
}

func categorySeconds(events []entity.ActivityEvent, r entity.TimeRange) (map[entity.ActivityCategory]int64, int64) {
	out := make(map[entity.ActivityCategory]int64, len(entity.ActivityCategories))
	var total int64
	for _, ev := range events {
		s := overlapSeconds(ev, r)
		out[ev.Category] += s
		total += s
	}
	return out, total
}

func overlapSeconds(ev entity.ActivityEvent, r entity.TimeRange) int64 {
	start, end := ev.Timestamp, ev.End()
	if start.Before(r.Start) {
		start = r.Start
	}
	if end.After(r.End) {
		end = r.End
	}
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}
