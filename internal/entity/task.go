package entity

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// WorkPattern is the per-task history the UI layer keeps alongside a task.
type WorkPattern struct {
	ProductiveHours []int `json:"productiveHours,omitempty"`
	SessionMinutes  int   `json:"sessionMinutes,omitempty"`
	MissedSessions  int   `json:"missedSessions,omitempty"`
}

// Task is consumed from the task layer. EstimatedTime and TimeSpent are minutes.
type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title,omitempty"`
	Status        TaskStatus   `json:"status"`
	Priority      string       `json:"priority,omitempty"`
	DueDate       *time.Time   `json:"dueDate,omitempty"`
	EstimatedTime int          `json:"estimatedTime,omitempty"`
	TimeSpent     int          `json:"timeSpent,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	WorkPattern   *WorkPattern `json:"workPattern,omitempty"`
	TimeBlocks    []TimeBlock  `json:"timeBlocks,omitempty"`
}

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

type TaskAnalysis struct {
	TaskID              string       `json:"taskId"`
	UrgencyLevel        UrgencyLevel `json:"urgencyLevel"`
	TimeUtilization     float64      `json:"timeUtilization"`
	ProcrastinationRisk int          `json:"procrastinationRisk"`
	ProgressRate        int          `json:"progressRate"`
	TimeRemaining       *int         `json:"timeRemaining,omitempty"`
	RecommendedAction   string       `json:"recommendedAction"`
	AnalyzedAt          time.Time    `json:"analyzedAt"`
}

// TimeBlock duration is in minutes; End = Start + Duration.
type TimeBlock struct {
	ID        string    `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Duration  int       `json:"duration"`
	Scheduled bool      `json:"scheduled"`
	Completed bool      `json:"completed"`
}

type ScheduleRequest struct {
	Task            Task  `json:"task" binding:"required"`
	ProductiveHours []int `json:"productiveHours,omitempty"`
}
