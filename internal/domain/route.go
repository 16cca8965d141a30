package domain

import "time"

// ─── Route Templates ────────────────────────────────────────────────────────

// WaypointTemplate is a static stop of a route template.
type WaypointTemplate struct {
	ID        string      `json:"id" yaml:"id" validate:"required"`
	Order     int         `json:"order" yaml:"order" validate:"gte=0"`
	Name      string      `json:"name" yaml:"name"`
	Narrative string      `json:"narrative,omitempty" yaml:"narrative"`
	Required  []EventKind `json:"required" yaml:"required" validate:"min=1,dive,event_kind"`
}

// RouteTemplate is the static, shared definition of a route.
// TimeLimit of zero means the route never expires.
type RouteTemplate struct {
	ID            string             `json:"id" yaml:"id" validate:"required"`
	Name          string             `json:"name" yaml:"name" validate:"required"`
	Description   string             `json:"description" yaml:"description"`
	Waypoints     []WaypointTemplate `json:"waypoints" yaml:"waypoints" validate:"min=1,dive"`
	Prerequisites Prerequisites      `json:"prerequisites" yaml:"prerequisites"`
	Reward        RewardSpec         `json:"reward" yaml:"reward"`
	WaypointBonus int64              `json:"waypoint_bonus,omitempty" yaml:"waypoint_bonus" validate:"gte=0"`
	TimeLimit     time.Duration      `json:"time_limit,omitempty" yaml:"time_limit" validate:"gte=0"`
}

// Clone returns a deep copy of the template.
func (t RouteTemplate) Clone() RouteTemplate {
	wps := make([]WaypointTemplate, len(t.Waypoints))
	for i, wp := range t.Waypoints {
		wp.Required = append([]EventKind(nil), wp.Required...)
		wps[i] = wp
	}
	t.Waypoints = wps
	t.Prerequisites.Achievements = append([]string(nil), t.Prerequisites.Achievements...)
	t.Reward = t.Reward.Clone()
	return t
}

// ─── Waypoints ──────────────────────────────────────────────────────────────

// WaypointState is derived from the visited/completed flags.
type WaypointState string

const (
	WaypointUnvisited WaypointState = "unvisited"
	WaypointVisited   WaypointState = "visited"
	WaypointCompleted WaypointState = "completed"
)

// Waypoint is a per-instance mutable copy of a WaypointTemplate.
type Waypoint struct {
	ID          string            `json:"id" validate:"required"`
	Order       int               `json:"order"`
	Name        string            `json:"name"`
	Narrative   string            `json:"narrative,omitempty"`
	Required    []EventKind       `json:"required" validate:"min=1"`
	Recorded    map[EventKind]int `json:"recorded"`
	Subjects    []string          `json:"subjects,omitempty"`
	Visited     bool              `json:"visited"`
	Completed   bool              `json:"completed"`
	VisitedAt   *time.Time        `json:"visited_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// State returns the waypoint's lifecycle state.
func (w Waypoint) State() WaypointState {
	switch {
	case w.Completed:
		return WaypointCompleted
	case w.Visited:
		return WaypointVisited
	}
	return WaypointUnvisited
}

// Requires reports whether kind is in the waypoint's required set.
func (w Waypoint) Requires(kind EventKind) bool {
	for _, k := range w.Required {
		if k == kind {
			return true
		}
	}
	return false
}

// Satisfied reports whether every required activity has been recorded.
func (w Waypoint) Satisfied() bool {
	for _, k := range w.Required {
		if w.Recorded[k] == 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the waypoint.
func (w Waypoint) Clone() Waypoint {
	w.Required = append([]EventKind(nil), w.Required...)
	rec := make(map[EventKind]int, len(w.Recorded))
	for k, v := range w.Recorded {
		rec[k] = v
	}
	w.Recorded = rec
	w.Subjects = append([]string(nil), w.Subjects...)
	if w.VisitedAt != nil {
		t := *w.VisitedAt
		w.VisitedAt = &t
	}
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		w.CompletedAt = &t
	}
	return w
}

// ─── Discoveries ────────────────────────────────────────────────────────────

// Rarity scales discovery bonus points.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Multiplier returns the bonus multiplier for the rarity; unknown is common.
func (r Rarity) Multiplier() int64 {
	switch r {
	case RarityUncommon:
		return 2
	case RarityRare:
		return 5
	case RarityEpic:
		return 10
	case RarityLegendary:
		return 25
	}
	return 1
}

// IsRare reports whether the rarity flags collection entries as rare.
func (r Rarity) IsRare() bool {
	return r.Multiplier() >= RarityRare.Multiplier()
}

// Discovery is a rarity-scored side find attached to a route instance.
type Discovery struct {
	ID         string    `json:"id" validate:"required"`
	Name       string    `json:"name,omitempty"`
	Rarity     Rarity    `json:"rarity,omitempty" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	WaypointID string    `json:"waypoint_id,omitempty"`
	FoundAt    time.Time `json:"found_at"`
	Points     int64     `json:"points" validate:"gte=0"`
}

// ─── Route Instances ────────────────────────────────────────────────────────

// RouteState is the lifecycle state of a route instance.
type RouteState string

const (
	RouteActive    RouteState = "active"
	RouteCompleted RouteState = "completed"
	RouteFailed    RouteState = "failed"
)

// RouteInstance is a per-start realization of a route template.
type RouteInstance struct {
	ID            string      `json:"id" validate:"required"`
	TemplateID    string      `json:"template_id" validate:"required"`
	Name          string      `json:"name"`
	Waypoints     []Waypoint  `json:"waypoints" validate:"min=1,dive"`
	Current       int         `json:"current" validate:"gte=0"`
	State         RouteState  `json:"state" validate:"oneof=active completed failed"`
	FailReason    FailReason  `json:"fail_reason,omitempty"`
	Reward        RewardSpec  `json:"reward"`
	WaypointBonus int64       `json:"waypoint_bonus" validate:"gte=0"`
	StartedAt     time.Time   `json:"started_at"`
	Deadline      *time.Time  `json:"deadline,omitempty"`
	ResolvedAt    *time.Time  `json:"resolved_at,omitempty"`
	Discoveries   []Discovery `json:"discoveries,omitempty" validate:"dive"`
	Granted       int64       `json:"granted,omitempty" validate:"gte=0"`
}

// NarrativeProgress is visited waypoints over total, in [0,1].
func (r RouteInstance) NarrativeProgress() float64 {
	if len(r.Waypoints) == 0 {
		return 0
	}
	visited := 0
	for _, wp := range r.Waypoints {
		if wp.Visited {
			visited++
		}
	}
	return float64(visited) / float64(len(r.Waypoints))
}

// CurrentWaypoint returns the waypoint the pointer is on, or nil.
func (r *RouteInstance) CurrentWaypoint() *Waypoint {
	if r.Current < 0 || r.Current >= len(r.Waypoints) {
		return nil
	}
	return &r.Waypoints[r.Current]
}

// Clone returns a deep copy of the instance.
func (r RouteInstance) Clone() RouteInstance {
	wps := make([]Waypoint, len(r.Waypoints))
	for i, wp := range r.Waypoints {
		wps[i] = wp.Clone()
	}
	r.Waypoints = wps
	r.Reward = r.Reward.Clone()
	r.Discoveries = append([]Discovery(nil), r.Discoveries...)
	if r.Deadline != nil {
		t := *r.Deadline
		r.Deadline = &t
	}
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		r.ResolvedAt = &t
	}
	return r
}
