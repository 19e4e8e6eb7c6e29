package entity

import "time"

type TaskType string

const (
	TaskTypeCreative       TaskType = "creative"
	TaskTypeAnalytical     TaskType = "analytical"
	TaskTypeCollaborative  TaskType = "collaborative"
	TaskTypeAdministrative TaskType = "administrative"
	TaskTypeRest           TaskType = "rest"
)

// ActivityIdle is reported as the current activity when nothing was sampled recently.
const ActivityIdle = "idle"

type ContextualState struct {
	CurrentActivity    string     `json:"currentActivity"`
	FocusLevel         int        `json:"focusLevel"`
	EnergyLevel        int        `json:"energyLevel"`
	DistractionRisk    int        `json:"distractionRisk"`
	OptimalTaskType    TaskType   `json:"optimalTaskType"`
	RecommendedBreakIn int        `json:"recommendedBreakIn"`
	LastBreak          *time.Time `json:"lastBreak"`
	ComputedAt         time.Time  `json:"computedAt"`
}

type InsightType string

const (
	InsightProductivityDip     InsightType = "productivity_dip"
	InsightBreakRecommendation InsightType = "break_recommendation"
	InsightFocusOpportunity    InsightType = "focus_opportunity"
	InsightStreakAtRisk        InsightType = "streak_at_risk"
)

type InsightSeverity string

const (
	SeverityInfo     InsightSeverity = "info"
	SeverityWarning  InsightSeverity = "warning"
	SeverityCritical InsightSeverity = "critical"
)

type PredictiveInsight struct {
	ID             string          `json:"id"`
	Type           InsightType     `json:"type"`
	Severity       InsightSeverity `json:"severity"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Recommendation string          `json:"recommendation"`
	Confidence     int             `json:"confidence"`
	Timeframe      string          `json:"timeframe"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type RecommendationType string

const (
	RecommendationScheduling       RecommendationType = "scheduling"
	RecommendationFocusEnhancement RecommendationType = "focus_enhancement"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	}
	return 2
}

type PersonalizedRecommendation struct {
	ID              string             `json:"id"`
	Type            RecommendationType `json:"type"`
	Priority        Priority           `json:"priority"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	ActionItems     []string           `json:"actionItems"`
	EstimatedImpact string             `json:"estimatedImpact"`
	ValidUntil      time.Time          `json:"validUntil"`
	CreatedAt       time.Time          `json:"createdAt"`
}

type AnalysisResult struct {
	Context         ContextualState              `json:"context"`
	Insights        []PredictiveInsight          `json:"insights"`
	Recommendations []PersonalizedRecommendation `json:"recommendations"`
}
