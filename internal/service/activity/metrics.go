package activity

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
)

const (
	topApplicationsLimit = 10
	// Productive events separated by at most this gap count as one session.
	sessionGapTolerance = 2 * time.Minute
	focusSaturation     = 30 * time.Minute
)

// Summary totals time per category and the top applications/sites within r.
// Event durations are clipped to r.
func (c *Collector) Summary(ctx context.Context, r entity.TimeRange) entity.ActivitySummary {
	events := c.Activities(ctx, &r)
	return summarize(events, r)
}

func summarize(events []entity.ActivityEvent, r entity.TimeRange) entity.ActivitySummary {
	summary := entity.ActivitySummary{
		Range:           r,
		Period:          utils.FormatPeriod(r.Start, r.End),
		EventCount:      len(events),
		ByCategory:      make(map[entity.ActivityCategory]int64, len(entity.ActivityCategories)),
		TopApplications: []entity.AppUsage{},
	}
	for _, category := range entity.ActivityCategories {
		summary.ByCategory[category] = 0
	}

	byLabel := make(map[string]int64)
	for _, e := range events {
		seconds := overlapSeconds(e, r)
		summary.TotalSeconds += seconds
		summary.ByCategory[e.Category] += seconds
		if label := e.Label(); label != "" {
			byLabel[label] += seconds
		}
	}

	for label, seconds := range byLabel {
		usage := entity.AppUsage{
			Label:   label,
			Seconds: seconds,
			Minutes: utils.RoundToTwoDecimals(float64(seconds) / 60),
		}
		if summary.TotalSeconds > 0 {
			usage.Percentage = utils.RoundToTwoDecimals(float64(seconds) / float64(summary.TotalSeconds) * 100)
		}
		summary.TopApplications = append(summary.TopApplications, usage)
	}
	sort.Slice(summary.TopApplications, func(i, j int) bool {
		a, b := summary.TopApplications[i], summary.TopApplications[j]
		if a.Seconds != b.Seconds {
			return a.Seconds > b.Seconds
		}
		return a.Label < b.Label
	})
	if len(summary.TopApplications) > topApplicationsLimit {
		summary.TopApplications = summary.TopApplications[:topApplicationsLimit]
	}

	return summary
}

// ProductivityMetrics scores activity within r. An empty range yields
// all-zero scores.
func (c *Collector) ProductivityMetrics(ctx context.Context, r entity.TimeRange) entity.ProductivityMetrics {
	events := c.Activities(ctx, &r)
	metrics := calculateMetrics(events, r)
	metrics.ComputedAt = c.clock.Now()
	return metrics
}

func calculateMetrics(events []entity.ActivityEvent, r entity.TimeRange) entity.ProductivityMetrics {
	metrics := entity.ProductivityMetrics{Period: utils.FormatPeriod(r.Start, r.End)}

	var total, productive int64
	for _, e := range events {
		seconds := overlapSeconds(e, r)
		total += seconds
		if e.Category == entity.CategoryProductive {
			productive += seconds
		}
	}
	if total == 0 {
		return metrics
	}

	ratio := float64(productive) / float64(total) * 100
	metrics.FocusScore = focusScore(events, r)
	metrics.ProductivityScore = utils.ClampScore(ratio)
	metrics.TimeManagementScore = utils.ClampScore(ratio)
	metrics.ConsistencyScore = consistencyScore(events, r)
	metrics.OverallScore = utils.ClampScore(metrics.WeightedOverall())
	return metrics
}

// focusScore maps the average productive session length onto 0-100,
// saturating at focusSaturation.
func focusScore(events []entity.ActivityEvent, r entity.TimeRange) int {
	productive := make([]entity.ActivityEvent, 0, len(events))
	for _, e := range events {
		if e.Category == entity.CategoryProductive && overlapSeconds(e, r) > 0 {
			productive = append(productive, e)
		}
	}
	if len(productive) == 0 {
		return 0
	}
	sort.Slice(productive, func(i, j int) bool { return productive[i].Timestamp.Before(productive[j].Timestamp) })

	var sessions []int64
	var current int64
	var lastEnd time.Time
	for i, e := range productive {
		seconds := overlapSeconds(e, r)
		if i > 0 && e.Timestamp.Sub(lastEnd) > sessionGapTolerance {
			sessions = append(sessions, current)
			current = 0
		}
		current += seconds
		if end := e.End(); end.After(lastEnd) {
			lastEnd = end
		}
	}
	sessions = append(sessions, current)

	var sum int64
	for _, s := range sessions {
		sum += s
	}
	avg := float64(sum) / float64(len(sessions))
	return utils.ClampScore(avg / focusSaturation.Seconds() * 100)
}

// consistencyScore penalizes uneven productive minutes across the clock
// hours that saw any activity.
func consistencyScore(events []entity.ActivityEvent, r entity.TimeRange) int {
	active := make(map[time.Time]float64)
	var anyProductive bool
	for _, e := range events {
		seconds := overlapSeconds(e, r)
		if seconds == 0 {
			continue
		}
		hour := e.Timestamp.Truncate(time.Hour)
		if _, ok := active[hour]; !ok {
			active[hour] = 0
		}
		if e.Category == entity.CategoryProductive {
			active[hour] += float64(seconds) / 60
			anyProductive = true
		}
	}
	if !anyProductive {
		return 0
	}

	var mean float64
	for _, minutes := range active {
		mean += minutes
	}
	mean /= float64(len(active))

	var variance float64
	for _, minutes := range active {
		variance += (minutes - mean) * (minutes - mean)
	}
	variance /= float64(len(active))

	return utils.ClampScore(math.Max(0, 100-variance/10))
}

// overlapSeconds is the part of e's duration that falls inside r.
func overlapSeconds(e entity.ActivityEvent, r entity.TimeRange) int64 {
	start, end := e.Timestamp, e.End()
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
