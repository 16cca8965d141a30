package domain

import "time"

// ─── Snapshot ───────────────────────────────────────────────────────────────

// SnapshotVersion is the schema version written by this build. Loaders treat
// any other version as "no prior data".
const SnapshotVersion = 1

// ChallengeBook holds every challenge instance by lifecycle bucket plus the
// per-kind outcome history used for adaptive difficulty (true = completed).
type ChallengeBook struct {
	Active    []ChallengeInstance `json:"active" validate:"dive"`
	Completed []ChallengeInstance `json:"completed" validate:"dive"`
	Failed    []ChallengeInstance `json:"failed" validate:"dive"`
	History   map[string][]bool   `json:"history,omitempty"`
}

// RouteBook holds every route instance by lifecycle bucket.
type RouteBook struct {
	Active    []RouteInstance `json:"active" validate:"dive"`
	Completed []RouteInstance `json:"completed" validate:"dive"`
	Failed    []RouteInstance `json:"failed" validate:"dive"`
}

// Snapshot is the complete, self-describing progression state of one user.
type Snapshot struct {
	Version      int               `json:"version" validate:"required"`
	UserID       string            `json:"user_id"`
	SavedAt      time.Time         `json:"saved_at"`
	Profile      Profile           `json:"profile"`
	Ledger       PointLedger       `json:"ledger"`
	Achievements []Achievement     `json:"achievements" validate:"dive"`
	Statistics   Statistics        `json:"statistics"`
	Challenges   ChallengeBook     `json:"challenges"`
	Collection   []CollectionEntry `json:"collection" validate:"dive"`
	Routes       RouteBook         `json:"routes"`
}

// NewSnapshot returns the defaulted state of a user with no history.
func NewSnapshot(userID string) Snapshot {
	return Snapshot{
		Version:    SnapshotVersion,
		UserID:     userID,
		Profile:    NewProfile(),
		Ledger:     make(PointLedger),
		Statistics: NewStatistics(),
		Challenges: ChallengeBook{History: make(map[string][]bool)},
	}
}

// Clone returns a deep copy that shares no mutable state with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Profile = s.Profile.Clone()
	out.Ledger = s.Ledger.Clone()
	out.Statistics = s.Statistics.Clone()

	out.Achievements = make([]Achievement, len(s.Achievements))
	for i, a := range s.Achievements {
		out.Achievements[i] = a.Clone()
	}

	out.Challenges = ChallengeBook{
		Active:    cloneChallenges(s.Challenges.Active),
		Completed: cloneChallenges(s.Challenges.Completed),
		Failed:    cloneChallenges(s.Challenges.Failed),
		History:   make(map[string][]bool, len(s.Challenges.History)),
	}
	for k, v := range s.Challenges.History {
		out.Challenges.History[k] = append([]bool(nil), v...)
	}

	out.Collection = append([]CollectionEntry(nil), s.Collection...)

	out.Routes = RouteBook{
		Active:    cloneRoutes(s.Routes.Active),
		Completed: cloneRoutes(s.Routes.Completed),
		Failed:    cloneRoutes(s.Routes.Failed),
	}
	return out
}

func cloneChallenges(in []ChallengeInstance) []ChallengeInstance {
	out := make([]ChallengeInstance, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func cloneRoutes(in []RouteInstance) []RouteInstance {
	out := make([]RouteInstance, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
