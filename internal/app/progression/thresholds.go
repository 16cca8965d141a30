package progression

import "github.com/wildtrail/wildtrail/internal/domain"

// ─── Threshold Tables ───────────────────────────────────────────────────────

// Threshold unlocks AchievementID once the tracked value reaches Value.
type Threshold struct {
	Value         int64
	AchievementID string
}

// ThresholdTable is ordered by ascending Value.
type ThresholdTable []Threshold

// Satisfied returns the achievement ids whose threshold value reaches.
func (t ThresholdTable) Satisfied(value int64) []string {
	var ids []string
	for _, th := range t {
		if value < th.Value {
			break
		}
		ids = append(ids, th.AchievementID)
	}
	return ids
}

var (
	PointThresholds = ThresholdTable{
		{100, "points_100"}, {500, "points_500"}, {1000, "points_1000"},
		{5000, "points_5000"}, {10000, "points_10000"},
	}
	LevelThresholds = ThresholdTable{
		{5, "level_5"}, {10, "level_10"}, {20, "level_20"}, {30, "level_30"},
	}
	StreakThresholds = ThresholdTable{
		{3, "streak_3"}, {7, "streak_7"}, {14, "streak_14"}, {30, "streak_30"},
	}
	ChallengeThresholds = ThresholdTable{
		{1, "challenges_1"}, {5, "challenges_5"}, {10, "challenges_10"}, {25, "challenges_25"},
	}
	CollectionThresholds = ThresholdTable{
		{10, "collection_10"}, {25, "collection_25"}, {50, "collection_50"}, {100, "collection_100"},
	}
	RouteThresholds = ThresholdTable{
		{1, "first_route"}, {3, "route_master"},
	}
	DiscoveryThresholds = ThresholdTable{
		{1, "first_discovery"}, {10, "keen_eye"},
	}
	EventThresholds = map[domain.EventKind]ThresholdTable{
		domain.EventSighting:       {{1, "first_sighting"}, {50, "sightings_50"}},
		domain.EventPhoto:          {{1, "first_photo"}, {50, "photos_50"}},
		domain.EventIdentification: {{1, "first_identification"}},
		domain.EventExploration:    {{1, "first_exploration"}},
		domain.EventCollaboration:  {{1, "first_collaboration"}},
		domain.EventDailyCheckIn:   {{1, "first_check_in"}},
	}
)

// ─── Chain Table ────────────────────────────────────────────────────────────

// ChainRule unlocks AchievementID once every id in Requires is unlocked.
type ChainRule struct {
	AchievementID string
	Requires      []string
}

var ChainRules = []ChainRule{
	{"field_naturalist", []string{"first_sighting", "first_photo", "first_identification"}},
	{"all_rounder", []string{"field_naturalist", "first_exploration", "first_collaboration"}},
	{"dedicated", []string{"streak_7", "challenges_5"}},
	{"legend_of_the_trail", []string{"level_20", "route_master"}},
}
