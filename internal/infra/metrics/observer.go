package metrics

import (
	"github.com/wildtrail/wildtrail/internal/domain"
)

// Observer feeds engine callbacks into the Prometheus counters. It holds no
// state, so one value can be subscribed to every session.
type Observer struct{}

func (Observer) OnPointsAwarded(category domain.PointCategory, amount int64) {
	PointsAwarded.WithLabelValues(string(category)).Add(float64(amount))
}

func (Observer) OnAchievementUnlocked(a domain.Achievement) {
	AchievementsUnlocked.WithLabelValues(a.ID).Inc()
}

func (Observer) OnLevelUp(previousLevel, newLevel int) {
	if newLevel > previousLevel {
		LevelUps.Add(float64(newLevel - previousLevel))
	}
}

func (Observer) OnChallengeResolved(c domain.ChallengeInstance) {
	ChallengesResolved.WithLabelValues(c.Kind, string(c.State), string(c.FailReason)).Inc()
}

// OnNarrativeProgress fires once per completed waypoint.
func (Observer) OnNarrativeProgress(_, _ string, _ float64) {
	WaypointsCompleted.Inc()
}
