package taskanalysis

import (
	"fmt"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
)

const schedulingHorizonDays = 7

func SessionLength(task entity.Task) int {
	if task.WorkPattern != nil && task.WorkPattern.SessionMinutes > 0 {
		return task.WorkPattern.SessionMinutes
	}
	return DefaultSessionMinutes
}

func SessionsNeeded(task entity.Task) int {
	length := SessionLength(task)
	estimate := estimateMinutes(task)
	needed := estimate / length
	if estimate%length != 0 {
		needed++
	}
	return needed
}

// GenerateSchedulingSuggestions proposes up to SessionsNeeded blocks on the
// weekdays of the next seven days, one per productive hour. Existing
// bookings are not consulted.
func GenerateSchedulingSuggestions(task entity.Task, productiveHours []int, now time.Time) []entity.TimeBlock {
	hours := productiveHours
	if len(hours) == 0 && task.WorkPattern != nil {
		hours = task.WorkPattern.ProductiveHours
	}
	if len(hours) == 0 {
		hours = DefaultProductiveHours
	}
	hours = uniqueHours(hours)

	length := SessionLength(task)
	needed := SessionsNeeded(task)
	blocks := make([]entity.TimeBlock, 0, min(needed, schedulingHorizonDays*len(hours)))

	today := utils.StartOfDay(now)
	for day := 1; day <= schedulingHorizonDays && len(blocks) < needed; day++ {
		date := today.AddDate(0, 0, day)
		if utils.IsWeekend(date) {
			continue
		}
		for _, hour := range hours {
			if len(blocks) >= needed {
				break
			}
			begin := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
			blocks = append(blocks, entity.TimeBlock{
				ID:        fmt.Sprintf("%s-%s-%02d", task.ID, utils.DateKey(begin), hour),
				Start:     begin,
				End:       begin.Add(time.Duration(length) * time.Minute),
				Duration:  length,
				Scheduled: false,
				Completed: false,
			})
		}
	}
	return blocks
}

// uniqueHours drops out-of-range and repeated hours, keeping first-seen order.
func uniqueHours(hours []int) []int {
	var seen [24]bool
	out := make([]int, 0, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
