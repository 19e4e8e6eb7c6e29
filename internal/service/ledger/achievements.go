package ledger

import (
	"context"

	"github.com/dinerozz/nudge-engine/internal/entity"
)

const (
	weekStreakTarget       = 7
	focusRegularTarget     = 10
	honestWorkerTarget     = 20
	honestWorkerIntegrity  = 90
	royaltyStreakTarget    = 30
	royaltyIntegrityTarget = 95
)

// Achievements derives badge progress from the full action history.
func (l *Ledger) Achievements(ctx context.Context, userID string) []entity.Achievement {
	var honest, focusSessions int
	for _, a := range l.load(ctx, userID) {
		switch a.Kind {
		case entity.ActionHonestCompletion:
			honest++
		case entity.ActionFocusCompleted:
			focusSessions++
		}
	}
	streak := l.StreakData(ctx, userID)
	integrity := l.IntegrityScore(ctx, userID).Score

	return []entity.Achievement{
		badge("first_completion", "First Step", "Complete your first task honestly.", honest, 1, true),
		badge("week_streak", "Week Warrior", "Complete tasks seven days in a row.", streak.LongestStreak, weekStreakTarget, true),
		badge("focus_regular", "Deep Diver", "Finish ten focus sessions.", focusSessions, focusRegularTarget, true),
		badge("honest_worker", "Honest Worker", "Complete twenty tasks honestly while keeping integrity at 90 or above.",
			honest, honestWorkerTarget, integrity >= honestWorkerIntegrity),
		badge("productivity_royalty", "Productivity Royalty", "Hold a thirty day streak with integrity at 95 or above.",
			streak.LongestStreak, royaltyStreakTarget, integrity >= royaltyIntegrityTarget),
	}
}

func badge(id, title, description string, progress, target int, gate bool) entity.Achievement {
	if progress > target {
		progress = target
	}
	return entity.Achievement{
		ID:          id,
		Title:       title,
		Description: description,
		Earned:      progress >= target && gate,
		Progress:    progress,
		Target:      target,
	}
}
