package insight

import (
	"context"
	"testing"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/internal/repository"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedActivity struct {
	overall map[string]int
}

func (s scriptedActivity) Activities(context.Context, *entity.TimeRange) []entity.ActivityEvent {
	return nil
}

func (s scriptedActivity) ProductivityMetrics(_ context.Context, r entity.TimeRange) entity.ProductivityMetrics {
	return entity.ProductivityMetrics{OverallScore: s.overall[utils.DateKey(r.Start)]}
}

func (s scriptedActivity) Summary(_ context.Context, r entity.TimeRange) entity.ActivitySummary {
	return entity.ActivitySummary{ByCategory: map[entity.ActivityCategory]int64{
		entity.CategoryProductive: int64(s.overall[utils.DateKey(r.Start)]) * 60,
	}}
}

func trendEngine(overall map[string]int) *Engine {
	return NewEngine("u1", DefaultConfig(), Deps{
		Activity: scriptedActivity{overall: overall},
		Repo:     repository.NewInsightRepository(repository.NewMemoryStore()),
		Clock:    utils.NewManualClock(time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)),
	})
}

func TestProductivityTrends(t *testing.T) {
	cases := []struct {
		name    string
		overall map[string]int
		want    entity.Trend
	}{
		{"improving", map[string]int{"2026-03-02": 10, "2026-03-03": 20, "2026-03-04": 40, "2026-03-05": 50}, entity.TrendImproving},
		{"declining", map[string]int{"2026-03-02": 60, "2026-03-03": 60, "2026-03-04": 40, "2026-03-05": 30}, entity.TrendDeclining},
		{"stable", map[string]int{"2026-03-02": 50, "2026-03-03": 50, "2026-03-04": 52, "2026-03-05": 53}, entity.TrendStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trends := trendEngine(tc.overall).ProductivityTrends(context.Background(), 4)

			require.Len(t, trends.Days, 4)
			assert.Equal(t, "2026-03-02", trends.Days[0].Date)
			assert.Equal(t, "2026-03-05", trends.Days[3].Date)
			assert.Equal(t, tc.want, trends.Trend)
			assert.Equal(t, float64(tc.overall["2026-03-05"]), trends.Days[3].ProductiveMinutes)
		})
	}
}

func TestProductivityTrendsDefaults(t *testing.T) {
	e := trendEngine(nil)

	assert.Len(t, e.ProductivityTrends(context.Background(), 0).Days, defaultTrendDays)
	assert.Len(t, e.ProductivityTrends(context.Background(), 365).Days, maxTrendDays)

	single := e.ProductivityTrends(context.Background(), 1)
	assert.Equal(t, entity.TrendStable, single.Trend)
}
