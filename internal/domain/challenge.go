package domain

import "time"

// ─── Shared Template Parts ──────────────────────────────────────────────────

// Prerequisites gate activation of a challenge or start of a route.
type Prerequisites struct {
	MinLevel      int      `json:"min_level,omitempty" yaml:"min_level" validate:"gte=0"`
	MinExperience int64    `json:"min_experience,omitempty" yaml:"min_experience" validate:"gte=0"`
	Achievements  []string `json:"achievements,omitempty" yaml:"achievements"`
}

// ItemRef points at a collection entry by (type, item id).
type ItemRef struct {
	Type   string `json:"type" yaml:"type" validate:"required"`
	ItemID string `json:"item_id" yaml:"item_id" validate:"required"`
}

// RewardSpec is what completing an instance grants.
// RareWithin, when positive, limits the rare item to completions inside
// that fraction of the instance's duration.
type RewardSpec struct {
	Points     int64    `json:"points" yaml:"points" validate:"gte=0"`
	RareItem   *ItemRef `json:"rare_item,omitempty" yaml:"rare_item"`
	RareWithin float64  `json:"rare_within,omitempty" yaml:"rare_within" validate:"gte=0,lte=1"`
}

// Clone returns a copy that shares no pointers with r.
func (r RewardSpec) Clone() RewardSpec {
	if r.RareItem != nil {
		item := *r.RareItem
		r.RareItem = &item
	}
	return r
}

// ─── Challenge Configuration ────────────────────────────────────────────────

// HourWindow is a local-time hour range [StartHour, EndHour).
// A window whose start is after its end wraps midnight.
type HourWindow struct {
	StartHour int `json:"start_hour" yaml:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int `json:"end_hour" yaml:"end_hour" validate:"gte=0,lte=24"`
}

// Contains reports whether hour falls inside the window.
func (w HourWindow) Contains(hour int) bool {
	if w.StartHour == w.EndHour {
		return true
	}
	if w.StartHour > w.EndHour {
		return hour >= w.StartHour || hour < w.EndHour
	}
	return hour >= w.StartHour && hour < w.EndHour
}

// ChallengeConfig is the resolved, typed configuration of a challenge.
// Empty Categories or Zones accept any value.
type ChallengeConfig struct {
	Objective        int           `json:"objective" yaml:"objective" validate:"gte=1"`
	Categories       []EventKind   `json:"categories,omitempty" yaml:"categories" validate:"dive,event_kind"`
	Zones            []string      `json:"zones,omitempty" yaml:"zones"`
	TimeWindow       *HourWindow   `json:"time_window,omitempty" yaml:"time_window"`
	MinQuality       Quality       `json:"min_quality,omitempty" yaml:"min_quality" validate:"quality"`
	DistinctSubjects bool          `json:"distinct_subjects,omitempty" yaml:"distinct_subjects"`
	Duration         time.Duration `json:"duration" yaml:"duration" validate:"gt=0"`
	Adaptive         bool          `json:"adaptive,omitempty" yaml:"adaptive"`
}

// Clone returns a deep copy of the configuration.
func (c ChallengeConfig) Clone() ChallengeConfig {
	c.Categories = append([]EventKind(nil), c.Categories...)
	c.Zones = append([]string(nil), c.Zones...)
	if c.TimeWindow != nil {
		w := *c.TimeWindow
		c.TimeWindow = &w
	}
	return c
}

// ChallengeOverrides carries caller overrides. Nil fields keep the template
// value; non-nil slices replace the template slice wholesale.
type ChallengeOverrides struct {
	Objective        *int           `json:"objective,omitempty"`
	Categories       []EventKind    `json:"categories,omitempty"`
	Zones            []string       `json:"zones,omitempty"`
	TimeWindow       *HourWindow    `json:"time_window,omitempty"`
	MinQuality       *Quality       `json:"min_quality,omitempty"`
	DistinctSubjects *bool          `json:"distinct_subjects,omitempty"`
	Duration         *time.Duration `json:"duration,omitempty"`
	Adaptive         *bool          `json:"adaptive,omitempty"`
}

// Merge resolves the template configuration against overrides field by field.
func (c ChallengeConfig) Merge(o *ChallengeOverrides) ChallengeConfig {
	out := c.Clone()
	if o == nil {
		return out
	}
	if o.Objective != nil {
		out.Objective = *o.Objective
	}
	if o.Categories != nil {
		out.Categories = append([]EventKind(nil), o.Categories...)
	}
	if o.Zones != nil {
		out.Zones = append([]string(nil), o.Zones...)
	}
	if o.TimeWindow != nil {
		w := *o.TimeWindow
		out.TimeWindow = &w
	}
	if o.MinQuality != nil {
		out.MinQuality = *o.MinQuality
	}
	if o.DistinctSubjects != nil {
		out.DistinctSubjects = *o.DistinctSubjects
	}
	if o.Duration != nil {
		out.Duration = *o.Duration
	}
	if o.Adaptive != nil {
		out.Adaptive = *o.Adaptive
	}
	return out
}

// ChallengeTemplate is the static, shared definition of a challenge.
// Kind keys the adaptive-difficulty history.
type ChallengeTemplate struct {
	ID            string          `json:"id" yaml:"id" validate:"required"`
	Name          string          `json:"name" yaml:"name" validate:"required"`
	Description   string          `json:"description" yaml:"description"`
	Kind          string          `json:"kind" yaml:"kind" validate:"required"`
	Config        ChallengeConfig `json:"config" yaml:"config"`
	Prerequisites Prerequisites   `json:"prerequisites" yaml:"prerequisites"`
	Reward        RewardSpec      `json:"reward" yaml:"reward"`
}

// Clone returns a deep copy of the template.
func (t ChallengeTemplate) Clone() ChallengeTemplate {
	t.Config = t.Config.Clone()
	t.Prerequisites.Achievements = append([]string(nil), t.Prerequisites.Achievements...)
	t.Reward = t.Reward.Clone()
	return t
}

// ─── Challenge Instances ────────────────────────────────────────────────────

// ChallengeState is the lifecycle state of an instance.
type ChallengeState string

const (
	ChallengeActive    ChallengeState = "active"
	ChallengeCompleted ChallengeState = "completed"
	ChallengeFailed    ChallengeState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s ChallengeState) Terminal() bool {
	return s == ChallengeCompleted || s == ChallengeFailed
}

// FailReason records why an instance ended without completing.
type FailReason string

const (
	FailExpired   FailReason = "expired"
	FailAbandoned FailReason = "abandoned"
)

// ChallengeStats are per-instance sub-statistics of matched events.
type ChallengeStats struct {
	CategoriesSeen map[EventKind]int `json:"categories_seen"`
	Zones          map[string]int    `json:"zones,omitempty"`
	Subjects       []string          `json:"subjects,omitempty"`
	MatchedAt      []time.Time       `json:"matched_at,omitempty"`
}

// NewChallengeStats returns empty statistics with initialized maps.
func NewChallengeStats() ChallengeStats {
	return ChallengeStats{
		CategoriesSeen: make(map[EventKind]int),
		Zones:          make(map[string]int),
	}
}

// ChallengeInstance is a per-activation realization of a template.
type ChallengeInstance struct {
	ID         string          `json:"id" validate:"required"`
	TemplateID string          `json:"template_id" validate:"required"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Config     ChallengeConfig `json:"config"`
	Reward     RewardSpec      `json:"reward"`
	StartedAt  time.Time       `json:"started_at"`
	Deadline   time.Time       `json:"deadline" validate:"gtfield=StartedAt"`
	Progress   int             `json:"progress" validate:"gte=0"`
	State      ChallengeState  `json:"state" validate:"oneof=active completed failed"`
	FailReason FailReason      `json:"fail_reason,omitempty"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
	Stats      ChallengeStats  `json:"stats"`
	Granted    int64           `json:"granted,omitempty" validate:"gte=0"`
}

// ProgressPct returns completion percentage (0-100).
func (c ChallengeInstance) ProgressPct() float64 {
	if c.Config.Objective <= 0 {
		return 100.0
	}
	pct := float64(c.Progress) / float64(c.Config.Objective) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// Remaining returns the time left before the deadline, never negative.
func (c ChallengeInstance) Remaining(now time.Time) time.Duration {
	if c.State.Terminal() || !now.Before(c.Deadline) {
		return 0
	}
	return c.Deadline.Sub(now)
}

// Clone returns a deep copy of the instance.
func (c ChallengeInstance) Clone() ChallengeInstance {
	c.Config = c.Config.Clone()
	c.Reward = c.Reward.Clone()
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		c.ResolvedAt = &t
	}
	seen := make(map[EventKind]int, len(c.Stats.CategoriesSeen))
	for k, v := range c.Stats.CategoriesSeen {
		seen[k] = v
	}
	zones := make(map[string]int, len(c.Stats.Zones))
	for k, v := range c.Stats.Zones {
		zones[k] = v
	}
	c.Stats = ChallengeStats{
		CategoriesSeen: seen,
		Zones:          zones,
		Subjects:       append([]string(nil), c.Stats.Subjects...),
		MatchedAt:      append([]time.Time(nil), c.Stats.MatchedAt...),
	}
	return c
}
