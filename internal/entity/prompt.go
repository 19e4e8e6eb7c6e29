package entity

type PromptSeverity string

const (
	PromptGentle PromptSeverity = "gentle"
	PromptMedium PromptSeverity = "medium"
	PromptSavage PromptSeverity = "savage"
)

type Persona string

// PromptTrigger is a conjunction of conditions; zero values impose no constraint.
type PromptTrigger struct {
	MinIdleMinutes         int          `yaml:"min_idle_minutes" json:"minIdleMinutes,omitempty"`
	MinPendingTasks        int          `yaml:"min_pending_tasks" json:"minPendingTasks,omitempty"`
	MinOverdueTasks        int          `yaml:"min_overdue_tasks" json:"minOverdueTasks,omitempty"`
	MaxCompletedToday      *int         `yaml:"max_completed_today" json:"maxCompletedToday,omitempty"`
	MinCompletedToday      int          `yaml:"min_completed_today" json:"minCompletedToday,omitempty"`
	MinDistractions        int          `yaml:"min_distractions" json:"minDistractions,omitempty"`
	MinProcrastinationRisk int          `yaml:"min_procrastination_risk" json:"minProcrastinationRisk,omitempty"`
	TaskStatuses           []TaskStatus `yaml:"task_statuses" json:"taskStatuses,omitempty"`
	Hours                  []int        `yaml:"hours" json:"hours,omitempty"`
}

func (t PromptTrigger) Matches(c PromptContext) bool {
	if c.IdleMinutes < t.MinIdleMinutes ||
		c.PendingTasks < t.MinPendingTasks ||
		c.OverdueTasks < t.MinOverdueTasks ||
		c.CompletedToday < t.MinCompletedToday ||
		c.Distractions < t.MinDistractions ||
		c.ProcrastinationRisk < t.MinProcrastinationRisk {
		return false
	}
	if t.MaxCompletedToday != nil && c.CompletedToday > *t.MaxCompletedToday {
		return false
	}
	if len(t.TaskStatuses) > 0 && !containsStatus(t.TaskStatuses, c.CurrentTaskStatus) {
		return false
	}
	if len(t.Hours) > 0 && (c.Hour == nil || !containsInt(t.Hours, *c.Hour)) {
		return false
	}
	return true
}

type SarcasticPrompt struct {
	ID       string         `yaml:"id" json:"id"`
	Message  string         `yaml:"message" json:"message"`
	Type     string         `yaml:"type" json:"type"`
	Severity PromptSeverity `yaml:"severity" json:"severity"`
	Persona  Persona        `yaml:"persona" json:"persona"`
	Trigger  PromptTrigger  `yaml:"trigger" json:"-"`
}

// PromptContext is assembled by the UI layer before asking for a nudge.
type PromptContext struct {
	IdleMinutes         int        `json:"idleMinutes"`
	PendingTasks        int        `json:"pendingTasks"`
	OverdueTasks        int        `json:"overdueTasks"`
	CompletedToday      int        `json:"completedToday"`
	Distractions        int        `json:"distractions"`
	ProcrastinationRisk int        `json:"procrastinationRisk"`
	CurrentTaskStatus   TaskStatus `json:"currentTaskStatus,omitempty"`
	Hour                *int       `json:"hour,omitempty"`
}

type ContextualPromptRequest struct {
	Context PromptContext `json:"context"`
	Persona Persona       `json:"persona"`
}

func containsStatus(list []TaskStatus, s TaskStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
