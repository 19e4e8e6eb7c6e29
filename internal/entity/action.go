package entity

import "time"

type ActionKind string

const (
	ActionTaskCreated             ActionKind = "task_created"
	ActionHonestCompletion        ActionKind = "honest_completion"
	ActionDishonestCompletion     ActionKind = "dishonest_completion"
	ActionFocusStarted            ActionKind = "focus_session_started"
	ActionFocusCompleted          ActionKind = "focus_session_completed"
	ActionProcrastinationDetected ActionKind = "procrastination_detected"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionTaskCreated, ActionHonestCompletion, ActionDishonestCompletion,
		ActionFocusStarted, ActionFocusCompleted, ActionProcrastinationDetected:
		return true
	}
	return false
}

func (k ActionKind) IsCompletion() bool {
	return k == ActionHonestCompletion || k == ActionDishonestCompletion
}

// Metadata keys understood by the ledger analytics.
const (
	MetaFocusMinutes      = "focus_minutes"
	MetaCompletionMinutes = "completion_minutes"
	MetaSessionID         = "session_id"
)

type UserAction struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Kind            ActionKind     `json:"action"`
	Timestamp       time.Time      `json:"timestamp"`
	TaskID          string         `json:"taskId,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	IntegrityImpact *int           `json:"integrityImpact,omitempty"`
}

type LogActionRequest struct {
	Kind            ActionKind     `json:"action" binding:"required"`
	TaskID          string         `json:"taskId,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	IntegrityImpact *int           `json:"integrityImpact,omitempty"`
}

type AnalyticsData struct {
	Days                     int     `json:"days"`
	TasksCreated             int     `json:"tasksCreated"`
	TasksCompleted           int     `json:"tasksCompleted"`
	FocusSessions            int     `json:"focusSessions"`
	ProcrastinationEvents    int     `json:"procrastinationEvents"`
	HonestCompletions        int     `json:"honestCompletions"`
	DishonestCompletions     int     `json:"dishonestCompletions"`
	TotalFocusMinutes        float64 `json:"totalFocusMinutes"`
	AverageCompletionMinutes float64 `json:"averageCompletionMinutes"`
	IntegrityPercentage      int     `json:"integrityPercentage"`
}

type StreakData struct {
	CurrentStreak      int    `json:"currentStreak"`
	LongestStreak      int    `json:"longestStreak"`
	LastCompletionDate string `json:"lastCompletionDate,omitempty"`
	CompletedToday     bool   `json:"completedToday"`
}

type IntegrityScore struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
}
