package insight

import (
	"fmt"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/dinerozz/nudge-engine/pkg/utils"
)

// Rule confidences are fixed per rule.
const (
	confidenceProductivityDip = 75
	confidenceBreak           = 85
	confidenceFocusWindow     = 80
	confidenceStreakAtRisk    = 70

	streakReminderHour = 18
)

func (e *Engine) evaluateInsights(state entity.ContextualState, streak *entity.StreakData, now time.Time) []entity.PredictiveInsight {
	var out []entity.PredictiveInsight
	add := func(in entity.PredictiveInsight) {
		in.ID = e.newID()
		in.CreatedAt = now
		out = append(out, in)
	}

	if state.EnergyLevel < 40 && state.FocusLevel < 50 {
		add(entity.PredictiveInsight{
			Type:           entity.InsightProductivityDip,
			Severity:       entity.SeverityWarning,
			Title:          "Productivity dip ahead",
			Description:    fmt.Sprintf("Energy is at %d and focus at %d. Output usually drops from here.", state.EnergyLevel, state.FocusLevel),
			Recommendation: "Switch to light administrative work or take a short walk.",
			Confidence:     confidenceProductivityDip,
			Timeframe:      "next hour",
		})
	}

	if state.RecommendedBreakIn <= 5 {
		severity := entity.SeverityInfo
		if state.RecommendedBreakIn == 0 {
			severity = entity.SeverityWarning
		}
		add(entity.PredictiveInsight{
			Type:           entity.InsightBreakRecommendation,
			Severity:       severity,
			Title:          "Break due",
			Description:    fmt.Sprintf("You have worked without a break for close to %d minutes.", int(e.cfg.BreakThreshold/time.Minute)),
			Recommendation: "Step away from the screen for five to ten minutes.",
			Confidence:     confidenceBreak,
			Timeframe:      fmt.Sprintf("within %s", utils.FormatMinutes(max(state.RecommendedBreakIn, 1))),
		})
	}

	if state.EnergyLevel > 70 && state.DistractionRisk < 30 {
		add(entity.PredictiveInsight{
			Type:           entity.InsightFocusOpportunity,
			Severity:       entity.SeverityInfo,
			Title:          "Good window for deep work",
			Description:    fmt.Sprintf("Energy is high (%d) and distractions are low. Suited to %s work.", state.EnergyLevel, state.OptimalTaskType),
			Recommendation: "Start your hardest task now and silence notifications.",
			Confidence:     confidenceFocusWindow,
			Timeframe:      "until " + utils.FormatHourTimestamp((now.Hour()+2)%24),
		})
	}

	if streak != nil && streakAtRisk(*streak, now) {
		add(entity.PredictiveInsight{
			Type:           entity.InsightStreakAtRisk,
			Severity:       entity.SeverityWarning,
			Title:          "Streak at risk",
			Description:    "Your completion streak ends tonight unless you finish something today.",
			Recommendation: "Finish one small task before the day ends.",
			Confidence:     confidenceStreakAtRisk,
			Timeframe:      "today",
		})
	}

	return out
}

// streakAtRisk is true in the evening when yesterday had a completion and
// today has none yet.
func streakAtRisk(streak entity.StreakData, now time.Time) bool {
	if streak.CompletedToday || now.Hour() < streakReminderHour {
		return false
	}
	yesterday := utils.DateKey(utils.StartOfDay(now).AddDate(0, 0, -1))
	return streak.LastCompletionDate == yesterday
}

func (e *Engine) evaluateRecommendations(state entity.ContextualState, now time.Time) []entity.PersonalizedRecommendation {
	var out []entity.PersonalizedRecommendation

	if state.EnergyLevel > 60 {
		priority := entity.PriorityMedium
		if state.EnergyLevel > 80 {
			priority = entity.PriorityHigh
		}
		out = append(out, entity.PersonalizedRecommendation{
			ID:          e.newID(),
			Type:        entity.RecommendationScheduling,
			Priority:    priority,
			Title:       fmt.Sprintf("Schedule %s work now", state.OptimalTaskType),
			Description: "Your energy is above average for the next couple of hours.",
			ActionItems: []string{
				"Pick the most demanding task on your list",
				"Block the next 90 minutes in your calendar",
				"Leave email and chat for later",
			},
			EstimatedImpact: "Around 25% more progress on complex tasks",
			ValidUntil:      now.Add(2 * time.Hour),
			CreatedAt:       now,
		})
	}

	if state.DistractionRisk > 50 {
		out = append(out, entity.PersonalizedRecommendation{
			ID:          e.newID(),
			Type:        entity.RecommendationFocusEnhancement,
			Priority:    entity.PriorityHigh,
			Title:       "Cut the distractions",
			Description: fmt.Sprintf("%d%% of the last half hour went to distracting activity.", state.DistractionRisk),
			ActionItems: []string{
				"Close entertainment tabs",
				"Turn on do-not-disturb",
				"Start a 25 minute focus session",
			},
			EstimatedImpact: "Recover up to 15 focused minutes per hour",
			ValidUntil:      now.Add(time.Hour),
			CreatedAt:       now,
		})
	}

	return out
}
