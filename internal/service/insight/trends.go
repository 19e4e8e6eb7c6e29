package insight

import (
	"context"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 90
	trendThreshold   = 5.0
)

// ProductivityTrends scores each of the last days calendar days and compares
// the first half of the window with the second.
func (e *Engine) ProductivityTrends(ctx context.Context, days int) entity.ProductivityTrends {
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	today := utils.StartOfDay(e.clock.Now())
	daily := make([]entity.DailyProductivity, 0, days)
	for i := days - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		r := entity.TimeRange{Start: start, End: start.AddDate(0, 0, 1)}

		summary := e.activity.Summary(ctx, r)
		daily = append(daily, entity.DailyProductivity{
			Date:              utils.DateKey(start),
			Metrics:           e.activity.ProductivityMetrics(ctx, r),
			ProductiveMinutes: utils.RoundToTwoDecimals(float64(summary.ByCategory[entity.CategoryProductive]) / 60),
		})
	}

	trends := entity.ProductivityTrends{Days: daily, Trend: entity.TrendStable}
	half := len(daily) / 2
	if half == 0 {
		return trends
	}

	trends.FirstHalfAverage = utils.RoundToTwoDecimals(meanOverall(daily[:half]))
	trends.SecondHalfAverage = utils.RoundToTwoDecimals(meanOverall(daily[len(daily)-half:]))
	switch diff := trends.SecondHalfAverage - trends.FirstHalfAverage; {
	case diff > trendThreshold:
		trends.Trend = entity.TrendImproving
	case diff < -trendThreshold:
		trends.Trend = entity.TrendDeclining
	}
	return trends
}

func meanOverall(days []entity.DailyProductivity) float64 {
	var sum float64
	for _, d := range days {
		sum += float64(d.Metrics.OverallScore)
	}
	return sum / float64(len(days))
}
