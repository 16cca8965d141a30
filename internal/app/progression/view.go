package progression

import (
	"context"
	"sort"

	"github.com/wildtrail/wildtrail/internal/domain"
)

// State is a deep-copied, read-only view of one user's progression.
type State struct {
	UserID           string                   `json:"user_id"`
	Profile          domain.Profile           `json:"profile"`
	ExperienceToNext int64                    `json:"experience_to_next"`
	LevelProgress    float64                  `json:"level_progress"`
	Ledger           domain.PointLedger       `json:"ledger"`
	Achievements     []domain.Achievement     `json:"achievements"`
	Statistics       domain.Statistics        `json:"statistics"`
	Challenges       ChallengeViews           `json:"challenges"`
	Routes           RouteViews               `json:"routes"`
	Collection       []domain.CollectionEntry `json:"collection"`
	Completion       map[string]float64       `json:"completion"`
}

// ChallengeView adds derived progress fields to an instance.
type ChallengeView struct {
	domain.ChallengeInstance
	ProgressPct      float64 `json:"progress_pct"`
	RemainingSeconds int64   `json:"remaining_seconds"`
}

// ChallengeViews groups challenge views by lifecycle bucket.
type ChallengeViews struct {
	Active    []ChallengeView `json:"active"`
	Completed []ChallengeView `json:"completed"`
	Failed    []ChallengeView `json:"failed"`
}

// RouteView adds derived narrative fields to an instance.
type RouteView struct {
	domain.RouteInstance
	NarrativeProgress float64 `json:"narrative_progress"`
	CurrentWaypointID string  `json:"current_waypoint_id,omitempty"`
}

// RouteViews groups route views by lifecycle bucket.
type RouteViews struct {
	Active    []RouteView `json:"active"`
	Completed []RouteView `json:"completed"`
	Failed    []RouteView `json:"failed"`
}

// View expires overdue instances, saving if any expired, and returns a
// read view of the state.
func (e *Engine) View(ctx context.Context) (State, error) {
	e.begin()
	e.challenges.ExpireOverdue()
	e.routes.ExpireOverdue()
	if err := e.commit(ctx); err != nil {
		return State{}, err
	}
	return e.buildView(), nil
}

func (e *Engine) buildView() State {
	snap := e.s.state.Clone()
	now := e.s.now()

	v := State{
		UserID:       e.userID,
		Profile:      snap.Profile,
		Ledger:       snap.Ledger,
		Achievements: snap.Achievements,
		Statistics:   snap.Statistics,
		Collection:   snap.Collection,
		Completion:   make(map[string]float64),
	}
	threshold := ThresholdForLevel(snap.Profile.Level)
	if snap.Profile.Level >= MaxLevel {
		v.LevelProgress = 1
	} else {
		v.ExperienceToNext = threshold - snap.Profile.Experience
		v.LevelProgress = float64(snap.Profile.Experience) / float64(threshold)
	}

	sort.SliceStable(v.Achievements, func(i, j int) bool {
		return v.Achievements[i].UnlockedAt.Before(*v.Achievements[j].UnlockedAt)
	})

	challengeViews := func(in []domain.ChallengeInstance) []ChallengeView {
		out := make([]ChallengeView, len(in))
		for i, c := range in {
			out[i] = ChallengeView{
				ChallengeInstance: c,
				ProgressPct:       c.ProgressPct(),
				RemainingSeconds:  int64(c.Remaining(now).Seconds()),
			}
		}
		return out
	}
	v.Challenges = ChallengeViews{
		Active:    challengeViews(snap.Challenges.Active),
		Completed: challengeViews(snap.Challenges.Completed),
		Failed:    challengeViews(snap.Challenges.Failed),
	}

	routeViews := func(in []domain.RouteInstance) []RouteView {
		out := make([]RouteView, len(in))
		for i, r := range in {
			rv := RouteView{RouteInstance: r, NarrativeProgress: r.NarrativeProgress()}
			if r.State == domain.RouteActive {
				if wp := r.CurrentWaypoint(); wp != nil {
					rv.CurrentWaypointID = wp.ID
				}
			}
			out[i] = rv
		}
		return out
	}
	v.Routes = RouteViews{
		Active:    routeViews(snap.Routes.Active),
		Completed: routeViews(snap.Routes.Completed),
		Failed:    routeViews(snap.Routes.Failed),
	}

	types := []string{
		domain.CollectionSpecies, domain.CollectionPhotos, domain.CollectionZones,
		domain.CollectionDiscoveries, domain.CollectionRelics,
	}
	for _, entry := range snap.Collection {
		if !contains(types, entry.Type) {
			types = append(types, entry.Type)
		}
	}
	for _, t := range types {
		v.Completion[t] = e.collection.Completion(t)
	}
	return v
}
