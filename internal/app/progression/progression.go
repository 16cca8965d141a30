// Package progression implements the progression and rewards engine:
// a points and leveling ledger, an achievement registry, a challenge
// lifecycle manager, a route progression tracker and the collection,
// composed around one Profile aggregate per user.
//
// One Engine serves one user. It is not safe for concurrent use; callers
// serialize access (the daemon keeps one mutex per user session).
package progression

import (
	"context"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// Store persists one opaque snapshot blob per user.
// Load returns nil, nil when the user has no saved state.
type Store interface {
	Load(ctx context.Context, userID string) ([]byte, error)
	Save(ctx context.Context, userID string, blob []byte) error
}

// Catalog supplies the static definitions the engine is driven by.
type Catalog interface {
	ChallengeTemplate(id string) (domain.ChallengeTemplate, bool)
	RouteTemplate(id string) (domain.RouteTemplate, bool)
	Achievement(id string) (domain.AchievementDef, bool)
	CollectionSize(collectionType string) int
}

// LevelChange records one level transition.
type LevelChange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Outcome summarizes what one operation changed.
type Outcome struct {
	Accepted             bool          `json:"accepted"`
	Reason               string        `json:"reason,omitempty"`
	Points               int64         `json:"points"`
	LevelUps             []LevelChange `json:"level_ups,omitempty"`
	Unlocked             []string      `json:"unlocked,omitempty"`
	ChallengesProgressed []string      `json:"challenges_progressed,omitempty"`
	ChallengesCompleted  []string      `json:"challenges_completed,omitempty"`
	ChallengesFailed     []string      `json:"challenges_failed,omitempty"`
	WaypointsCompleted   []string      `json:"waypoints_completed,omitempty"`
	RoutesCompleted      []string      `json:"routes_completed,omitempty"`
}

// session is the mutable state shared by the components of one engine.
// Components only touch state through it; state is replaced wholesale on
// import.
type session struct {
	userID string
	state  domain.Snapshot
	now    func() time.Time
	loc    *time.Location
	log    *logger.Logger
	obs    *hub
	out    *Outcome
	dirty  bool
}

// touch marks the state as needing a save.
func (s *session) touch() {
	s.dirty = true
}

// reject logs a rejected operation. Rejections are expected outcomes.
func (s *session) reject(op, reason string, kv ...interface{}) {
	s.log.Debug(op+" rejected", append([]interface{}{"user_id", s.userID, "reason", reason}, kv...)...)
}

// local converts t to the engine's calendar timezone.
func (s *session) local(t time.Time) time.Time {
	return t.In(s.loc)
}
