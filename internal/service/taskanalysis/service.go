package taskanalysis

import (
	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
)

// Analyzer binds the pure analysis functions to a clock.
type Analyzer struct {
	clock utils.Clock
}

func NewAnalyzer(clock utils.Clock) *Analyzer {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Analyzer{clock: clock}
}

func (a *Analyzer) AnalyzeTask(task entity.Task) entity.TaskAnalysis {
	return AnalyzeTask(task, a.clock.Now())
}

func (a *Analyzer) GenerateSchedulingSuggestions(task entity.Task, productiveHours []int) []entity.TimeBlock {
	return GenerateSchedulingSuggestions(task, productiveHours, a.clock.Now())
}
