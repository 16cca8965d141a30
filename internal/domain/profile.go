// Package domain holds the progression types.
// A single user's advancement: points, levels, achievements, challenges,
// routes and a collectible inventory, all owned by one Profile aggregate.
// Types here are pure data; the rules live in internal/app/progression.
package domain

import "time"

// ─── Profile ────────────────────────────────────────────────────────────────

// Profile is the per-user aggregate every component reads from.
// Experience is always progress within the current level.
type Profile struct {
	Level            int        `json:"level" validate:"gte=1"`
	Experience       int64      `json:"experience" validate:"gte=0"`
	TotalPoints      int64      `json:"total_points" validate:"gte=0"`
	CurrentStreak    int        `json:"current_streak" validate:"gte=0"`
	LongestStreak    int        `json:"longest_streak" validate:"gtefield=CurrentStreak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// NewProfile returns the defaulted profile of a user with no history.
func NewProfile() Profile {
	return Profile{Level: 1}
}

// Clone returns a copy that shares no pointers with p.
func (p Profile) Clone() Profile {
	if p.LastActivityDate != nil {
		d := *p.LastActivityDate
		p.LastActivityDate = &d
	}
	return p
}

// ─── Point Ledger ───────────────────────────────────────────────────────────

// PointCategory names a bucket of the point ledger.
type PointCategory string

const (
	PointsSighting         PointCategory = "sighting"
	PointsPhoto            PointCategory = "photo"
	PointsIdentification   PointCategory = "identification"
	PointsExploration      PointCategory = "exploration"
	PointsCollaboration    PointCategory = "collaboration"
	PointsDaily            PointCategory = "daily"
	PointsAchievementBonus PointCategory = "achievementBonus"
	PointsLevelBonus       PointCategory = "levelBonus"
	PointsChallengeReward  PointCategory = "challengeReward"
	PointsRouteReward      PointCategory = "routeReward"
	PointsDiscoveryBonus   PointCategory = "discoveryBonus"
)

// PointCategories lists every ledger category in display order.
func PointCategories() []PointCategory {
	return []PointCategory{
		PointsSighting, PointsPhoto, PointsIdentification, PointsExploration,
		PointsCollaboration, PointsDaily, PointsAchievementBonus, PointsLevelBonus,
		PointsChallengeReward, PointsRouteReward, PointsDiscoveryBonus,
	}
}

// Valid reports whether c is a known ledger category.
func (c PointCategory) Valid() bool {
	for _, known := range PointCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// PointLedger holds per-category point totals. Totals only ever grow.
type PointLedger map[PointCategory]int64

// Sum returns the total across all categories.
func (l PointLedger) Sum() int64 {
	var total int64
	for _, v := range l {
		total += v
	}
	return total
}

// Clone returns an independent copy of the ledger.
func (l PointLedger) Clone() PointLedger {
	out := make(PointLedger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// ─── Statistics ─────────────────────────────────────────────────────────────

// Statistics are lifetime counters fed to achievement threshold tables.
type Statistics struct {
	Events              map[EventKind]int `json:"events"`
	ChallengesCompleted int               `json:"challenges_completed" validate:"gte=0"`
	ChallengesFailed    int               `json:"challenges_failed" validate:"gte=0"`
	RoutesCompleted     int               `json:"routes_completed" validate:"gte=0"`
	WaypointsCompleted  int               `json:"waypoints_completed" validate:"gte=0"`
	Discoveries         int               `json:"discoveries" validate:"gte=0"`
}

// NewStatistics returns zeroed statistics with initialized maps.
func NewStatistics() Statistics {
	return Statistics{Events: make(map[EventKind]int)}
}

// Clone returns an independent copy.
func (s Statistics) Clone() Statistics {
	events := make(map[EventKind]int, len(s.Events))
	for k, v := range s.Events {
		events[k] = v
	}
	s.Events = events
	return s
}
