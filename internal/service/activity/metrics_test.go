package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func hourRange() entity.TimeRange {
	return entity.TimeRange{Start: base, End: base.Add(time.Hour)}
}

func TestProductivityMetricsEmptyRange(t *testing.T) {
	f := newFixture(t, nil)

	metrics := f.collector.ProductivityMetrics(context.Background(), hourRange())

	assert.Zero(t, metrics.FocusScore)
	assert.Zero(t, metrics.ProductivityScore)
	assert.Zero(t, metrics.TimeManagementScore)
	assert.Zero(t, metrics.ConsistencyScore)
	assert.Zero(t, metrics.OverallScore)
	assert.NotEmpty(t, metrics.Period)
}

func TestProductivityMetricsScores(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.clock.Set(base.Add(time.Hour))

	f.collector.Record(ctx,
		event(0, entity.CategoryProductive, 600, "VS Code"),
		event(10*time.Minute, entity.CategoryProductive, 600, "VS Code"),
		event(20*time.Minute, entity.CategoryProductive, 600, "Terminal"),
		event(30*time.Minute, entity.CategoryDistracting, 600, "youtube.com"),
	)

	metrics := f.collector.ProductivityMetrics(ctx, hourRange())

	assert.Equal(t, 100, metrics.FocusScore)
	assert.Equal(t, 75, metrics.ProductivityScore)
	assert.Equal(t, 75, metrics.TimeManagementScore)
	assert.Equal(t, 100, metrics.ConsistencyScore)
	assert.Equal(t, 88, metrics.OverallScore)
	assert.True(t, metrics.ComputedAt.Equal(base.Add(time.Hour)))
}

func TestFocusScoreSplitsSessionsOnGaps(t *testing.T) {
	events := []entity.ActivityEvent{
		event(0, entity.CategoryProductive, 300, "a"),
		event(20*time.Minute, entity.CategoryProductive, 300, "a"),
	}
	// Two separate 5 minute sessions average to 5 of 30 minutes.
	assert.Equal(t, 17, focusScore(events, hourRange()))

	joined := []entity.ActivityEvent{
		event(0, entity.CategoryProductive, 300, "a"),
		event(6*time.Minute, entity.CategoryProductive, 300, "a"),
	}
	assert.Equal(t, 33, focusScore(joined, hourRange()))
}

func TestConsistencyScorePenalizesUnevenHours(t *testing.T) {
	r := entity.TimeRange{Start: base, End: base.Add(3 * time.Hour)}
	even := []entity.ActivityEvent{
		event(0, entity.CategoryProductive, 1800, "a"),
		event(time.Hour, entity.CategoryProductive, 1800, "a"),
	}
	uneven := []entity.ActivityEvent{
		event(0, entity.CategoryProductive, 3600, "a"),
		event(time.Hour, entity.CategoryNeutral, 60, "b"),
	}

	assert.Equal(t, 100, consistencyScore(even, r))
	// Hours with 60 and 0 productive minutes: variance 900.
	assert.Equal(t, 10, consistencyScore(uneven, r))
	assert.Equal(t, 0, consistencyScore([]entity.ActivityEvent{event(0, entity.CategoryNeutral, 60, "b")}, r))
}

func TestSummaryTopApplications(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		f.collector.Record(ctx, event(time.Duration(i)*time.Minute, entity.CategoryNeutral, int64(10+i), fmt.Sprintf("app-%02d", i)))
	}
	f.collector.Record(ctx, event(50*time.Minute, entity.CategoryBreak, 120, ""))

	summary := f.collector.Summary(ctx, hourRange())

	require.Len(t, summary.TopApplications, topApplicationsLimit)
	assert.Equal(t, "app-11", summary.TopApplications[0].Label)
	assert.Equal(t, int64(21), summary.TopApplications[0].Seconds)
	assert.Equal(t, int64(120), summary.ByCategory[entity.CategoryBreak])
	assert.Equal(t, int64(0), summary.ByCategory[entity.CategoryProductive])
	assert.Equal(t, 13, summary.EventCount)
}

func TestSummaryClipsToRange(t *testing.T) {
	events := []entity.ActivityEvent{event(-10*time.Minute, entity.CategoryProductive, 1200, "a")}
	summary := summarize(events, hourRange())
	assert.Equal(t, int64(600), summary.TotalSeconds)
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, CheckRange(hourRange()))
	assert.ErrorIs(t, CheckRange(entity.TimeRange{Start: base, End: base.Add(-time.Second)}), ErrInvalidRange)
}

func genEvents(t *rapid.T) []entity.ActivityEvent {
	n := rapid.IntRange(0, 40).Draw(t, "count")
	events := make([]entity.ActivityEvent, 0, n)
	for i := 0; i < n; i++ {
		offset := rapid.IntRange(-120, 240).Draw(t, "offsetMinutes")
		seconds := rapid.Int64Range(0, 7200).Draw(t, "seconds")
		category := rapid.SampledFrom(entity.ActivityCategories).Draw(t, "category")
		events = append(events, event(time.Duration(offset)*time.Minute, category, seconds, "app"))
	}
	return events
}

func TestPropertyMetricsStayInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		events := genEvents(t)
		r := entity.TimeRange{Start: base, End: base.Add(2 * time.Hour)}

		m := calculateMetrics(events, r)
		for name, score := range map[string]int{
			"focus": m.FocusScore, "productivity": m.ProductivityScore,
			"timeManagement": m.TimeManagementScore, "consistency": m.ConsistencyScore,
			"overall": m.OverallScore,
		} {
			if score < 0 || score > 100 {
				t.Fatalf("%s score %d out of range", name, score)
			}
		}
		if m.ProductivityScore != m.TimeManagementScore {
			t.Fatalf("productivity %d != time management %d", m.ProductivityScore, m.TimeManagementScore)
		}
	})
}
