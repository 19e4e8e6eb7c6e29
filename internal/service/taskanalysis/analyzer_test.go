package taskanalysis

import (
	"testing"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Monday.
var now = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func due(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestCriticalWhenDueSoonerThanHalfEstimate(t *testing.T) {
	task := entity.Task{ID: "t1", Status: entity.TaskTodo, EstimatedTime: 60, DueDate: due(20 * time.Minute), CreatedAt: now}

	analysis := AnalyzeTask(task, now)

	assert.Equal(t, entity.UrgencyCritical, analysis.UrgencyLevel)
	assert.Equal(t, ActionUrgent, analysis.RecommendedAction)
	require.NotNil(t, analysis.TimeRemaining)
	assert.Equal(t, 20, *analysis.TimeRemaining)
}

func TestUrgencyThresholds(t *testing.T) {
	cases := []struct {
		name     string
		estimate int
		due      time.Duration
		want     entity.UrgencyLevel
	}{
		{"critical", 120, 59 * time.Minute, entity.UrgencyCritical},
		{"high", 120, 2 * time.Hour, entity.UrgencyHigh},
		{"medium", 120, 3 * time.Hour, entity.UrgencyMedium},
		{"low", 120, 4 * time.Hour, entity.UrgencyLow},
		{"default estimate", 0, 40 * time.Minute, entity.UrgencyHigh},
		{"overdue", 30, -time.Hour, entity.UrgencyCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := entity.Task{EstimatedTime: tc.estimate, DueDate: due(tc.due)}
			assert.Equal(t, tc.want, UrgencyLevel(task, now))
		})
	}
}

func TestProcrastinationRiskFactors(t *testing.T) {
	stale := entity.Task{Status: entity.TaskTodo, CreatedAt: now.Add(-4 * 24 * time.Hour)}
	assert.Equal(t, 30, ProcrastinationRisk(stale, now))

	stale.DueDate = due(30 * time.Minute)
	assert.Equal(t, 70, ProcrastinationRisk(stale, now))

	stale.DueDate = due(90 * time.Minute)
	assert.Equal(t, 50, ProcrastinationRisk(stale, now))

	stale.WorkPattern = &entity.WorkPattern{MissedSessions: 4}
	assert.Equal(t, 70, ProcrastinationRisk(stale, now))

	started := entity.Task{Status: entity.TaskInProgress, CreatedAt: now.Add(-10 * 24 * time.Hour)}
	assert.Equal(t, 0, ProcrastinationRisk(started, now))
}

func TestRecommendedActionPriority(t *testing.T) {
	assert.Equal(t, ActionUrgent, RecommendedAction(entity.UrgencyCritical, 100))
	assert.Equal(t, ActionWarning, RecommendedAction(entity.UrgencyHigh, 61))
	assert.Equal(t, ActionOnTrack, RecommendedAction(entity.UrgencyHigh, 60))
	assert.Equal(t, ActionBreakChunks, RecommendedAction(entity.UrgencyLow, 81))
	assert.Equal(t, ActionOnTrack, RecommendedAction(entity.UrgencyMedium, 10))
}

func TestProgressRate(t *testing.T) {
	assert.Equal(t, 100, ProgressRate(entity.Task{Status: entity.TaskDone}))
	assert.Equal(t, 0, ProgressRate(entity.Task{Status: entity.TaskTodo, TimeSpent: 500}))
	assert.Equal(t, 50, ProgressRate(entity.Task{Status: entity.TaskInProgress, EstimatedTime: 60, TimeSpent: 30}))
	assert.Equal(t, 90, ProgressRate(entity.Task{Status: entity.TaskInProgress, EstimatedTime: 60, TimeSpent: 600}))
	assert.Equal(t, 25, ProgressRate(entity.Task{Status: entity.TaskInProgress, TimeSpent: 15}))
}

func TestTimeUtilizationUsesAllocatedBlocks(t *testing.T) {
	task := entity.Task{
		Status:        entity.TaskInProgress,
		EstimatedTime: 200,
		TimeSpent:     30,
		TimeBlocks:    []entity.TimeBlock{{Duration: 25}, {Duration: 25}},
	}
	assert.Equal(t, 60.0, TimeUtilization(task))
	assert.Equal(t, 15, ProgressRate(task))
	assert.Zero(t, TimeUtilization(entity.Task{TimeSpent: 30}))
}

func TestNoDueDate(t *testing.T) {
	analysis := AnalyzeTask(entity.Task{Status: entity.TaskTodo, CreatedAt: now}, now)
	assert.Nil(t, analysis.TimeRemaining)
	assert.Equal(t, entity.UrgencyLow, analysis.UrgencyLevel)
	assert.Equal(t, ActionOnTrack, analysis.RecommendedAction)
}

func genTask(t *rapid.T) entity.Task {
	task := entity.Task{
		ID:            "t",
		Status:        rapid.SampledFrom([]entity.TaskStatus{entity.TaskTodo, entity.TaskInProgress, entity.TaskDone}).Draw(t, "status"),
		EstimatedTime: rapid.IntRange(-10, 5000).Draw(t, "estimate"),
		TimeSpent:     rapid.IntRange(0, 10000).Draw(t, "spent"),
		CreatedAt:     now.Add(-time.Duration(rapid.IntRange(0, 60*24).Draw(t, "ageHours")) * time.Hour),
	}
	if rapid.Bool().Draw(t, "hasDue") {
		task.DueDate = due(time.Duration(rapid.IntRange(-10000, 100000).Draw(t, "dueMinutes")) * time.Minute)
	}
	if rapid.Bool().Draw(t, "hasPattern") {
		task.WorkPattern = &entity.WorkPattern{
			MissedSessions: rapid.IntRange(0, 10).Draw(t, "missed"),
			SessionMinutes: rapid.IntRange(0, 120).Draw(t, "sessionMinutes"),
		}
	}
	return task
}

func TestPropertyRiskWithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := AnalyzeTask(genTask(t), now)
		if a.ProcrastinationRisk < 0 || a.ProcrastinationRisk > 100 {
			t.Fatalf("risk %d out of range", a.ProcrastinationRisk)
		}
		if a.ProgressRate < 0 || a.ProgressRate > 100 {
			t.Fatalf("progress %d out of range", a.ProgressRate)
		}
	})
}

func TestPropertyNoDueDateIsLowUrgency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		task := genTask(t)
		task.DueDate = nil
		if got := UrgencyLevel(task, now); got != entity.UrgencyLow {
			t.Fatalf("urgency %s for task without due date", got)
		}
	})
}

func TestPropertyProgressIsHundredOnlyWhenDone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		task := genTask(t)
		rate := ProgressRate(task)
		if (rate == 100) != (task.Status == entity.TaskDone) {
			t.Fatalf("progress %d for status %s", rate, task.Status)
		}
		if task.Status == entity.TaskTodo && rate != 0 {
			t.Fatalf("todo task reports progress %d", rate)
		}
	})
}
