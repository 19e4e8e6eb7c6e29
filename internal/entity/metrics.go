// entity/metrics.go
package entity

import "time"

// ProductivityMetrics scores are integers on a 0-100 scale.
type ProductivityMetrics struct {
	FocusScore          int       `json:"focusScore"`
	ProductivityScore   int       `json:"productivityScore"`
	TimeManagementScore int       `json:"timeManagementScore"`
	ConsistencyScore    int       `json:"consistencyScore"`
	OverallScore        int       `json:"overallScore"`
	ComputedAt          time.Time `json:"computedAt"`
	Period              string    `json:"period"`
}

const (
	FocusWeight          = 0.3
	ProductivityWeight   = 0.3
	TimeManagementWeight = 0.2
	ConsistencyWeight    = 0.2
)

func (m ProductivityMetrics) WeightedOverall() float64 {
	return float64(m.FocusScore)*FocusWeight +
		float64(m.ProductivityScore)*ProductivityWeight +
		float64(m.TimeManagementScore)*TimeManagementWeight +
		float64(m.ConsistencyScore)*ConsistencyWeight
}

type DailyProductivity struct {
	Date              string              `json:"date"`
	Metrics           ProductivityMetrics `json:"metrics"`
	ProductiveMinutes float64             `json:"productiveMinutes"`
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

type ProductivityTrends struct {
	Days              []DailyProductivity `json:"days"`
	Trend             Trend               `json:"trend"`
	FirstHalfAverage  float64             `json:"firstHalfAverage"`
	SecondHalfAverage float64             `json:"secondHalfAverage"`
}
