package domain

import (
	"testing"
	"time"
)

// ─── Event Tests ────────────────────────────────────────────────────────────

func TestEventKind_PointCategory(t *testing.T) {
	for _, k := range EventKinds() {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
		if !k.PointCategory().Valid() {
			t.Errorf("%s maps to unknown category %s", k, k.PointCategory())
		}
	}
	if EventDailyCheckIn.PointCategory() != PointsDaily {
		t.Errorf("expected daily, got %s", EventDailyCheckIn.PointCategory())
	}
	if EventKind("dancing").Valid() {
		t.Error("unknown kind should be invalid")
	}
}

func TestQuality_Rank(t *testing.T) {
	order := []Quality{"", QualityPoor, QualityFair, QualityGood, QualityExcellent}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("%q should outrank %q", order[i], order[i-1])
		}
	}
	if Quality("sublime").Valid() {
		t.Error("unknown quality should be invalid")
	}
	if !Quality("").Valid() {
		t.Error("empty quality should be valid")
	}
}

// ─── Challenge Config Tests ─────────────────────────────────────────────────

func TestHourWindow_Contains(t *testing.T) {
	tests := []struct {
		name     string
		w        HourWindow
		hour     int
		expected bool
	}{
		{"inside", HourWindow{5, 9}, 6, true},
		{"start inclusive", HourWindow{5, 9}, 5, true},
		{"end exclusive", HourWindow{5, 9}, 9, false},
		{"before", HourWindow{5, 9}, 4, false},
		{"wraps late", HourWindow{21, 3}, 23, true},
		{"wraps early", HourWindow{21, 3}, 2, true},
		{"wraps outside", HourWindow{21, 3}, 12, false},
		{"whole day", HourWindow{0, 0}, 17, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Contains(tt.hour); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestChallengeConfig_Merge(t *testing.T) {
	base := ChallengeConfig{
		Objective:  5,
		Categories: []EventKind{EventSighting},
		Zones:      []string{"meadow"},
		Duration:   time.Hour,
		Adaptive:   true,
	}
	obj := 2
	off := false
	q := QualityGood
	merged := base.Merge(&ChallengeOverrides{
		Objective:  &obj,
		Zones:      []string{},
		MinQuality: &q,
		Adaptive:   &off,
	})

	if merged.Objective != 2 || merged.MinQuality != QualityGood || merged.Adaptive {
		t.Errorf("overrides not applied: %+v", merged)
	}
	if len(merged.Categories) != 1 || merged.Duration != time.Hour {
		t.Errorf("unset fields should keep template values: %+v", merged)
	}
	if len(merged.Zones) != 0 {
		t.Errorf("an empty non-nil slice should replace the template zones, got %v", merged.Zones)
	}

	merged.Categories[0] = EventPhoto
	if base.Categories[0] != EventSighting {
		t.Error("merge must not share slices with the template")
	}
	if nilMerged := base.Merge(nil); nilMerged.Objective != 5 {
		t.Errorf("nil overrides should keep the template, got %d", nilMerged.Objective)
	}
}

func TestChallengeInstance_Derived(t *testing.T) {
	start := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	c := ChallengeInstance{
		Config:    ChallengeConfig{Objective: 4},
		Progress:  1,
		StartedAt: start,
		Deadline:  start.Add(2 * time.Hour),
	}
	if pct := c.ProgressPct(); pct != 25 {
		t.Errorf("expected 25%%, got %f", pct)
	}
	if r := c.Remaining(start.Add(time.Hour)); r != time.Hour {
		t.Errorf("expected 1h remaining, got %v", r)
	}
	if r := c.Remaining(start.Add(3 * time.Hour)); r != 0 {
		t.Errorf("remaining should not go negative, got %v", r)
	}
}

// ─── Route Tests ────────────────────────────────────────────────────────────

func TestRarity_Multiplier(t *testing.T) {
	tests := []struct {
		r    Rarity
		mult int64
		rare bool
	}{
		{RarityCommon, 1, false},
		{RarityUncommon, 2, false},
		{RarityRare, 5, true},
		{RarityEpic, 10, true},
		{RarityLegendary, 25, true},
	}
	for _, tt := range tests {
		if got := tt.r.Multiplier(); got != tt.mult {
			t.Errorf("%s: expected multiplier %d, got %d", tt.r, tt.mult, got)
		}
		if got := tt.r.IsRare(); got != tt.rare {
			t.Errorf("%s: expected rare=%v, got %v", tt.r, tt.rare, got)
		}
	}
}

func TestWaypoint_Satisfied(t *testing.T) {
	wp := Waypoint{
		Required: []EventKind{EventSighting, EventPhoto},
		Recorded: map[EventKind]int{EventSighting: 3},
	}
	if wp.Satisfied() {
		t.Error("waypoint needs a photo too")
	}
	wp.Recorded[EventPhoto] = 1
	if !wp.Satisfied() {
		t.Error("waypoint should be satisfied")
	}
	if wp.Requires(EventCollaboration) {
		t.Error("collaboration is not required")
	}
}

func TestRouteInstance_NarrativeProgress(t *testing.T) {
	r := RouteInstance{Waypoints: []Waypoint{{Visited: true}, {Visited: true}, {}, {}}}
	if p := r.NarrativeProgress(); p != 0.5 {
		t.Errorf("expected 0.5, got %f", p)
	}
	r.Current = 1
	if wp := r.CurrentWaypoint(); wp != &r.Waypoints[1] {
		t.Error("current waypoint should point into the instance")
	}
	if p := (RouteInstance{}).NarrativeProgress(); p != 0 {
		t.Errorf("empty route should report 0, got %f", p)
	}
}

// ─── Snapshot Tests ─────────────────────────────────────────────────────────

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := NewSnapshot("alice")
	s.Ledger[PointsSighting] = 10
	s.Statistics.Events[EventSighting] = 1
	s.Routes.Active = []RouteInstance{{
		ID:        "r1",
		Waypoints: []Waypoint{{ID: "a", Recorded: map[EventKind]int{}}},
	}}
	s.Challenges.History["sighting"] = []bool{true}

	c := s.Clone()
	c.Ledger[PointsSighting] = 99
	c.Statistics.Events[EventSighting] = 99
	c.Routes.Active[0].Waypoints[0].Recorded[EventSighting] = 5
	c.Challenges.History["sighting"][0] = false

	if s.Ledger[PointsSighting] != 10 || s.Statistics.Events[EventSighting] != 1 {
		t.Error("clone shares ledger or statistics")
	}
	if s.Routes.Active[0].Waypoints[0].Recorded[EventSighting] != 0 {
		t.Error("clone shares waypoint state")
	}
	if !s.Challenges.History["sighting"][0] {
		t.Error("clone shares challenge history")
	}
}

func TestCollectionKey(t *testing.T) {
	e := CollectionEntry{Type: CollectionSpecies, ItemID: "heron"}
	if e.Key() != CollectionKey(CollectionSpecies, "heron") {
		t.Errorf("unexpected key %s", e.Key())
	}
	if CollectionKey("a/b", "c") == CollectionKey("a", "b/c") {
		t.Error("keys with a separator in the id must not collide")
	}
	if CollectionKey("species", "heron") == CollectionKey("photos", "heron") {
		t.Error("types must be part of the key")
	}
}
