package domain

import "time"

// ─── Activity Events ────────────────────────────────────────────────────────

// EventKind is the discriminant of an inbound activity event.
type EventKind string

const (
	EventSighting       EventKind = "sighting"
	EventPhoto          EventKind = "photo"
	EventIdentification EventKind = "identification"
	EventExploration    EventKind = "exploration"
	EventCollaboration  EventKind = "collaboration"
	EventDailyCheckIn   EventKind = "dailyCheckIn"
)

// EventKinds lists every activity kind.
func EventKinds() []EventKind {
	return []EventKind{
		EventSighting, EventPhoto, EventIdentification,
		EventExploration, EventCollaboration, EventDailyCheckIn,
	}
}

// Valid reports whether k is a known activity kind.
func (k EventKind) Valid() bool {
	for _, known := range EventKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// PointCategory maps the event kind to the ledger bucket it credits.
func (k EventKind) PointCategory() PointCategory {
	if k == EventDailyCheckIn {
		return PointsDaily
	}
	return PointCategory(k)
}

// Quality grades an observation. The zero value means "not graded".
type Quality string

const (
	QualityPoor      Quality = "poor"
	QualityFair      Quality = "fair"
	QualityGood      Quality = "good"
	QualityExcellent Quality = "excellent"
)

// Rank orders qualities; ungraded and unknown values rank 0.
func (q Quality) Rank() int {
	switch q {
	case QualityPoor:
		return 1
	case QualityFair:
		return 2
	case QualityGood:
		return 3
	case QualityExcellent:
		return 4
	}
	return 0
}

// Valid reports whether q is empty or a known grade.
func (q Quality) Valid() bool {
	return q == "" || q.Rank() > 0
}

// EventContext is the free-form payload consumed by multiplier and
// challenge validation logic. Every field is optional.
type EventContext struct {
	Subject        string            `json:"subject,omitempty"`
	Zone           string            `json:"zone,omitempty"`
	Quality        Quality           `json:"quality,omitempty" validate:"quality"`
	SpecialWeather bool              `json:"special_weather,omitempty"`
	FirstTime      bool              `json:"first_time,omitempty"`
	Partners       int               `json:"partners,omitempty" validate:"gte=0"`
	DistanceMeters float64           `json:"distance_m,omitempty" validate:"gte=0"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// MaxEventPoints bounds an event's base points override. Keep in sync with
// the lte tag on ActivityEvent.Points.
const MaxEventPoints = 1000000

// ActivityEvent is a typed activity produced by the event source.
// Points overrides the kind's base points when positive.
type ActivityEvent struct {
	Kind    EventKind    `json:"kind" validate:"required,event_kind"`
	At      time.Time    `json:"at" validate:"required"`
	Points  int64        `json:"points,omitempty" validate:"gte=0,lte=1000000"`
	Context EventContext `json:"context"`
}

// ActivityRecord is one processed event in a user's activity journal.
type ActivityRecord struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	Kind     EventKind `json:"kind"`
	At       time.Time `json:"at"`
	Accepted bool      `json:"accepted"`
	Points   int64     `json:"points"`
	Reason   string    `json:"reason,omitempty"`
}
