// Package taskanalysis derives urgency, risk and progress figures from a
// single task. Everything here is a pure function of the task and the time.
package taskanalysis

import (
	"math"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
)

const (
	DefaultEstimateMinutes = 60
	DefaultSessionMinutes  = 25
	staleTaskAge           = 3 * 24 * time.Hour
	missedSessionsRisk     = 3
)

const (
	ActionUrgent      = "Start immediately: the deadline is closer than the work left."
	ActionWarning     = "Deadline pressure is building and this task keeps slipping. Block time for it today."
	ActionBreakChunks = "Break this task into smaller chunks and schedule the first one."
	ActionOnTrack     = "On track. Keep the current pace."
)

var DefaultProductiveHours = []int{9, 10, 14, 15}

func AnalyzeTask(task entity.Task, now time.Time) entity.TaskAnalysis {
	urgency := UrgencyLevel(task, now)
	risk := ProcrastinationRisk(task, now)

	return entity.TaskAnalysis{
		TaskID:              task.ID,
		UrgencyLevel:        urgency,
		TimeUtilization:     TimeUtilization(task),
		ProcrastinationRisk: risk,
		ProgressRate:        ProgressRate(task),
		TimeRemaining:       TimeRemaining(task, now),
		RecommendedAction:   RecommendedAction(urgency, risk),
		AnalyzedAt:          now,
	}
}

func estimateMinutes(task entity.Task) int {
	if task.EstimatedTime <= 0 {
		return DefaultEstimateMinutes
	}
	return task.EstimatedTime
}

func hoursRemaining(task entity.Task, now time.Time) (float64, bool) {
	if task.DueDate == nil {
		return 0, false
	}
	return task.DueDate.Sub(now).Hours(), true
}

func UrgencyLevel(task entity.Task, now time.Time) entity.UrgencyLevel {
	remaining, ok := hoursRemaining(task, now)
	if !ok {
		return entity.UrgencyLow
	}
	estimated := float64(estimateMinutes(task)) / 60

	switch {
	case remaining < 0.5*estimated:
		return entity.UrgencyCritical
	case remaining < 1.2*estimated:
		return entity.UrgencyHigh
	case remaining < 2*estimated:
		return entity.UrgencyMedium
	}
	return entity.UrgencyLow
}

// ProcrastinationRisk adds up age, deadline pressure and missed sessions,
// capped at 100.
func ProcrastinationRisk(task entity.Task, now time.Time) int {
	risk := 0

	if task.Status == entity.TaskTodo && !task.CreatedAt.IsZero() && now.Sub(task.CreatedAt) > staleTaskAge {
		risk += 30
	}

	if remaining, ok := hoursRemaining(task, now); ok {
		estimated := float64(estimateMinutes(task)) / 60
		if remaining < estimated {
			risk += 40
		} else if remaining < 2*estimated {
			risk += 20
		}
	}

	if task.WorkPattern != nil && task.WorkPattern.MissedSessions >= missedSessionsRisk {
		risk += 20
	}

	if risk > 100 {
		return 100
	}
	return risk
}

func ProgressRate(task entity.Task) int {
	switch task.Status {
	case entity.TaskDone:
		return 100
	case entity.TaskInProgress:
		rate := float64(task.TimeSpent) / float64(estimateMinutes(task)) * 100
		return int(math.Max(0, math.Min(90, math.Round(rate))))
	}
	return 0
}

// TimeUtilization is time spent as a percentage of the minutes allocated in
// the task's time blocks. Tasks without blocks report 0.
func TimeUtilization(task entity.Task) float64 {
	allocated := 0
	for _, block := range task.TimeBlocks {
		allocated += block.Duration
	}
	if allocated <= 0 {
		return 0
	}
	return utils.RoundToTwoDecimals(float64(task.TimeSpent) / float64(allocated) * 100)
}

// TimeRemaining is whole minutes until the due date, negative once overdue.
func TimeRemaining(task entity.Task, now time.Time) *int {
	if task.DueDate == nil {
		return nil
	}
	minutes := int(math.Floor(task.DueDate.Sub(now).Minutes()))
	return &minutes
}

func RecommendedAction(urgency entity.UrgencyLevel, risk int) string {
	switch {
	case urgency == entity.UrgencyCritical:
		return ActionUrgent
	case urgency == entity.UrgencyHigh && risk > 60:
		return ActionWarning
	case risk > 80:
		return ActionBreakChunks
	}
	return ActionOnTrack
}
