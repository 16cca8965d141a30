// Package catalog provides the static definitions progression is driven by:
// challenge templates, route templates, achievement display metadata and
// the known size of each collection.
// This is wildtrail's "field guide". It maps stable ids like
// "dawn_chorus" to the rules of the challenge behind them.
package catalog

import (
	"sort"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
)

const day = 24 * time.Hour

// Catalog is an immutable-by-convention set of templates. Lookups return
// deep copies so callers can never mutate a shared template.
type Catalog struct {
	challenges   map[string]domain.ChallengeTemplate
	routes       map[string]domain.RouteTemplate
	achievements map[string]domain.AchievementDef
	collections  map[string]int
}

// Builtin returns a catalog holding the built-in definitions.
func Builtin() *Catalog {
	c := &Catalog{
		challenges:   make(map[string]domain.ChallengeTemplate),
		routes:       make(map[string]domain.RouteTemplate),
		achievements: make(map[string]domain.AchievementDef),
		collections:  make(map[string]int),
	}
	for _, t := range builtinChallenges {
		c.challenges[t.ID] = t.Clone()
	}
	for _, t := range builtinRoutes {
		c.routes[t.ID] = t.Clone()
	}
	for _, a := range builtinAchievements {
		c.achievements[a.ID] = a
	}
	for k, v := range builtinCollections {
		c.collections[k] = v
	}
	return c
}

// ChallengeTemplate looks up a challenge template by id.
func (c *Catalog) ChallengeTemplate(id string) (domain.ChallengeTemplate, bool) {
	t, ok := c.challenges[id]
	if !ok {
		return domain.ChallengeTemplate{}, false
	}
	return t.Clone(), true
}

// RouteTemplate looks up a route template by id.
func (c *Catalog) RouteTemplate(id string) (domain.RouteTemplate, bool) {
	t, ok := c.routes[id]
	if !ok {
		return domain.RouteTemplate{}, false
	}
	return t.Clone(), true
}

// Achievement looks up achievement display metadata by id.
func (c *Catalog) Achievement(id string) (domain.AchievementDef, bool) {
	a, ok := c.achievements[id]
	return a, ok
}

// CollectionSize returns the known catalog size of a collection type,
// or 0 when the type is open-ended.
func (c *Catalog) CollectionSize(collectionType string) int {
	return c.collections[collectionType]
}

// ChallengeTemplates returns every challenge template sorted by id.
func (c *Catalog) ChallengeTemplates() []domain.ChallengeTemplate {
	out := make([]domain.ChallengeTemplate, 0, len(c.challenges))
	for _, t := range c.challenges {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RouteTemplates returns every route template sorted by id.
func (c *Catalog) RouteTemplates() []domain.RouteTemplate {
	out := make([]domain.RouteTemplate, 0, len(c.routes))
	for _, t := range c.routes {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Achievements returns every achievement definition sorted by id.
func (c *Catalog) Achievements() []domain.AchievementDef {
	out := make([]domain.AchievementDef, 0, len(c.achievements))
	for _, a := range c.achievements {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Collections returns a copy of the collection size table.
func (c *Catalog) Collections() map[string]int {
	out := make(map[string]int, len(c.collections))
	for k, v := range c.collections {
		out[k] = v
	}
	return out
}

// ─── Built-in Collections ───────────────────────────────────────────────────

var builtinCollections = map[string]int{
	domain.CollectionSpecies:     150,
	domain.CollectionPhotos:      100,
	domain.CollectionZones:       12,
	domain.CollectionDiscoveries: 40,
	domain.CollectionRelics:      10,
}

// ─── Built-in Challenges ────────────────────────────────────────────────────

var builtinChallenges = []domain.ChallengeTemplate{
	{
		ID:          "dawn_chorus",
		Name:        "Dawn Chorus",
		Description: "Log 5 sightings between 05:00 and 09:00",
		Kind:        "sighting",
		Config: domain.ChallengeConfig{
			Objective:  5,
			Categories: []domain.EventKind{domain.EventSighting},
			TimeWindow: &domain.HourWindow{StartHour: 5, EndHour: 9},
			Duration:   3 * day,
			Adaptive:   true,
		},
		Reward: domain.RewardSpec{Points: 150},
	},
	{
		ID:          "shutterbug",
		Name:        "Shutterbug",
		Description: "Take 10 good-or-better photos in a week",
		Kind:        "photo",
		Config: domain.ChallengeConfig{
			Objective:  10,
			Categories: []domain.EventKind{domain.EventPhoto},
			MinQuality: domain.QualityGood,
			Duration:   7 * day,
			Adaptive:   true,
		},
		Reward: domain.RewardSpec{
			Points:     300,
			RareItem:   &domain.ItemRef{Type: domain.CollectionRelics, ItemID: "golden_lens"},
			RareWithin: 0.5,
		},
	},
	{
		ID:          "species_sleuth",
		Name:        "Species Sleuth",
		Description: "Identify 5 different species",
		Kind:        "identification",
		Config: domain.ChallengeConfig{
			Objective:        5,
			Categories:       []domain.EventKind{domain.EventIdentification},
			DistinctSubjects: true,
			Duration:         7 * day,
			Adaptive:         true,
		},
		Prerequisites: domain.Prerequisites{MinLevel: 3},
		Reward:        domain.RewardSpec{Points: 400},
	},
	{
		ID:          "trailblazer",
		Name:        "Trailblazer",
		Description: "Explore 3 wild zones in 5 days",
		Kind:        "exploration",
		Config: domain.ChallengeConfig{
			Objective:  3,
			Categories: []domain.EventKind{domain.EventExploration},
			Zones:      []string{"wetland", "old_forest", "meadow", "coast", "ridge"},
			Duration:   5 * day,
		},
		Prerequisites: domain.Prerequisites{MinLevel: 5},
		Reward: domain.RewardSpec{
			Points:   500,
			RareItem: &domain.ItemRef{Type: domain.CollectionRelics, ItemID: "compass_rose"},
		},
	},
	{
		ID:          "field_team",
		Name:        "Field Team",
		Description: "Join 3 collaborative surveys",
		Kind:        "collaboration",
		Config: domain.ChallengeConfig{
			Objective:  3,
			Categories: []domain.EventKind{domain.EventCollaboration},
			Duration:   7 * day,
		},
		Prerequisites: domain.Prerequisites{Achievements: []string{"first_collaboration"}},
		Reward:        domain.RewardSpec{Points: 250},
	},
	{
		ID:          "daily_naturalist",
		Name:        "Daily Naturalist",
		Description: "Record 3 sightings, photos or identifications today",
		Kind:        "mixed",
		Config: domain.ChallengeConfig{
			Objective:  3,
			Categories: []domain.EventKind{domain.EventSighting, domain.EventPhoto, domain.EventIdentification},
			Duration:   day,
			Adaptive:   true,
		},
		Reward: domain.RewardSpec{Points: 75},
	},
}

// ─── Built-in Routes ────────────────────────────────────────────────────────

var builtinRoutes = []domain.RouteTemplate{
	{
		ID:          "river_trail",
		Name:        "River Trail",
		Description: "Follow the river from the trailhead to the old bridge",
		Waypoints: []domain.WaypointTemplate{
			{ID: "trailhead", Order: 0, Name: "Trailhead", Narrative: "The path begins where the reeds thin out.", Required: []domain.EventKind{domain.EventSighting}},
			{ID: "heron_pool", Order: 1, Name: "Heron Pool", Narrative: "Something tall stands motionless in the shallows.", Required: []domain.EventKind{domain.EventSighting, domain.EventPhoto}},
			{ID: "old_bridge", Order: 2, Name: "Old Bridge", Narrative: "Moss hides the carvings on the keystone.", Required: []domain.EventKind{domain.EventIdentification}},
		},
		Reward:        domain.RewardSpec{Points: 300},
		WaypointBonus: 25,
	},
	{
		ID:          "ancient_forest",
		Name:        "Ancient Forest",
		Description: "Find the elder oak before the season turns",
		Waypoints: []domain.WaypointTemplate{
			{ID: "forest_gate", Order: 0, Name: "Forest Gate", Narrative: "Two beeches lean together over the path.", Required: []domain.EventKind{domain.EventExploration}},
			{ID: "mossy_hollow", Order: 1, Name: "Mossy Hollow", Narrative: "The ground softens and the light turns green.", Required: []domain.EventKind{domain.EventSighting, domain.EventPhoto}},
			{ID: "elder_oak", Order: 2, Name: "Elder Oak", Narrative: "Its roots are older than the village.", Required: []domain.EventKind{domain.EventIdentification}},
			{ID: "canopy_view", Order: 3, Name: "Canopy View", Narrative: "From the ridge the whole forest breathes.", Required: []domain.EventKind{domain.EventPhoto, domain.EventCollaboration}},
		},
		Prerequisites: domain.Prerequisites{MinLevel: 3},
		Reward: domain.RewardSpec{
			Points:   600,
			RareItem: &domain.ItemRef{Type: domain.CollectionRelics, ItemID: "acorn_of_the_elder"},
		},
		WaypointBonus: 25,
		TimeLimit:     14 * day,
	},
	{
		ID:          "coastal_path",
		Name:        "Coastal Path",
		Description: "Walk the cliffs from the cove to the lighthouse",
		Waypoints: []domain.WaypointTemplate{
			{ID: "cove", Order: 0, Name: "Hidden Cove", Narrative: "The tide leaves a map in the sand.", Required: []domain.EventKind{domain.EventExploration}},
			{ID: "cliff_top", Order: 1, Name: "Cliff Top", Narrative: "Gulls wheel below your feet.", Required: []domain.EventKind{domain.EventPhoto}},
			{ID: "lighthouse", Order: 2, Name: "Lighthouse", Narrative: "The keeper's log lists every bird since 1902.", Required: []domain.EventKind{domain.EventSighting, domain.EventIdentification}},
		},
		Reward:        domain.RewardSpec{Points: 400},
		WaypointBonus: 25,
	},
}

// ─── Built-in Achievements ──────────────────────────────────────────────────

var builtinAchievements = []domain.AchievementDef{
	// Points milestones
	{ID: "points_100", Name: "Seedling", Description: "Earn 100 points", Category: domain.CatMilestone},
	{ID: "points_500", Name: "Sapling", Description: "Earn 500 points", Category: domain.CatMilestone},
	{ID: "points_1000", Name: "Grove Keeper", Description: "Earn 1,000 points", Category: domain.CatMilestone},
	{ID: "points_5000", Name: "Forest Warden", Description: "Earn 5,000 points", Category: domain.CatMilestone},
	{ID: "points_10000", Name: "Old Growth", Description: "Earn 10,000 points", Category: domain.CatMilestone},

	// Levels
	{ID: "level_5", Name: "Field Hand", Description: "Reach level 5", Category: domain.CatLevel},
	{ID: "level_10", Name: "Tracker", Description: "Reach level 10", Category: domain.CatLevel},
	{ID: "level_20", Name: "Naturalist", Description: "Reach level 20", Category: domain.CatLevel},
	{ID: "level_30", Name: "Sage of the Wilds", Description: "Reach level 30", Category: domain.CatLevel},

	// Streaks
	{ID: "streak_3", Name: "Warming Up", Description: "Be active 3 days in a row", Category: domain.CatStreak},
	{ID: "streak_7", Name: "Week in the Wild", Description: "Be active 7 days in a row", Category: domain.CatStreak},
	{ID: "streak_14", Name: "Fortnight Field Notes", Description: "Be active 14 days in a row", Category: domain.CatStreak},
	{ID: "streak_30", Name: "Season Regular", Description: "Be active 30 days in a row", Category: domain.CatStreak},

	// Challenges
	{ID: "challenges_1", Name: "Challenger", Description: "Complete a challenge", Category: domain.CatChallenge},
	{ID: "challenges_5", Name: "Go-Getter", Description: "Complete 5 challenges", Category: domain.CatChallenge},
	{ID: "challenges_10", Name: "Relentless", Description: "Complete 10 challenges", Category: domain.CatChallenge},
	{ID: "challenges_25", Name: "Unstoppable", Description: "Complete 25 challenges", Category: domain.CatChallenge},

	// Collection
	{ID: "collection_10", Name: "Collector", Description: "Collect 10 distinct items", Category: domain.CatCollection},
	{ID: "collection_25", Name: "Curator", Description: "Collect 25 distinct items", Category: domain.CatCollection},
	{ID: "collection_50", Name: "Archivist", Description: "Collect 50 distinct items", Category: domain.CatCollection},
	{ID: "collection_100", Name: "Living Museum", Description: "Collect 100 distinct items", Category: domain.CatCollection},

	// First of each kind
	{ID: "first_sighting", Name: "First Sighting", Description: "Record your first sighting", Category: domain.CatFieldCraft},
	{ID: "first_photo", Name: "First Photo", Description: "Take your first photo", Category: domain.CatFieldCraft},
	{ID: "first_identification", Name: "First Identification", Description: "Identify your first species", Category: domain.CatFieldCraft},
	{ID: "first_exploration", Name: "First Steps", Description: "Explore your first zone", Category: domain.CatFieldCraft},
	{ID: "first_collaboration", Name: "Better Together", Description: "Join your first collaborative survey", Category: domain.CatFieldCraft},
	{ID: "first_check_in", Name: "Checked In", Description: "Complete your first daily check-in", Category: domain.CatFieldCraft},
	{ID: "sightings_50", Name: "Keen Spotter", Description: "Record 50 sightings", Category: domain.CatFieldCraft},
	{ID: "photos_50", Name: "Portfolio", Description: "Take 50 photos", Category: domain.CatFieldCraft},

	// Routes and discoveries
	{ID: "first_route", Name: "Wayfarer", Description: "Complete a route", Category: domain.CatExploration},
	{ID: "route_master", Name: "Pathfinder", Description: "Complete 3 routes", Category: domain.CatExploration},
	{ID: "first_discovery", Name: "Curious Mind", Description: "Make your first discovery", Category: domain.CatExploration},
	{ID: "keen_eye", Name: "Keen Eye", Description: "Make 10 discoveries", Category: domain.CatExploration},

	// Chained
	{ID: "field_naturalist", Name: "Field Naturalist", Description: "Sight, photograph and identify", Category: domain.CatFieldCraft, RewardPoints: 100},
	{ID: "all_rounder", Name: "All-Rounder", Description: "Try every field activity", Category: domain.CatFieldCraft, RewardPoints: 150},
	{ID: "dedicated", Name: "Dedicated", Description: "Hold a week-long streak and finish 5 challenges", Category: domain.CatStreak, RewardPoints: 200},
	{ID: "legend_of_the_trail", Name: "Legend of the Trail", Description: "Reach level 20 and master the routes", Category: domain.CatExploration, RewardPoints: 500},
}
