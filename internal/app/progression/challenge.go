package progression

import (
	"time"

	"github.com/google/uuid"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/platform/validate"
)

const (
	// AdaptiveWindow is the trailing number of outcomes adaptive
	// difficulty looks at.
	AdaptiveWindow = 3
	// HistoryLimit bounds the outcomes kept per challenge kind.
	HistoryLimit = 10
	// DefaultChallengeReward is granted when a template names no points.
	DefaultChallengeReward = 50
)

// AdaptObjective scales objective by the trailing outcome window: three
// straight successes raise it 20% (rounded up), any other full window
// lowers it 20% (rounded down, minimum 1). Short histories leave it as is.
func AdaptObjective(objective int, history []bool) int {
	if len(history) < AdaptiveWindow {
		return objective
	}
	allWon := true
	for _, won := range history[len(history)-AdaptiveWindow:] {
		if !won {
			allWon = false
			break
		}
	}
	var scaled int
	if allWon {
		scaled = (objective*6 + 4) / 5
	} else {
		scaled = objective * 4 / 5
	}
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

// ChallengeManager owns challenge instances and their lifecycle.
type ChallengeManager struct {
	s          *session
	ledger     *Ledger
	registry   *Registry
	collection *Collection
	catalog    Catalog
	adaptive   bool
}

// Activate instantiates templateID merged with overrides. Returns nil when
// the template is unknown, prerequisites are unmet, an instance of the
// template is already active, or the resolved configuration is invalid.
func (m *ChallengeManager) Activate(templateID string, o *domain.ChallengeOverrides) *domain.ChallengeInstance {
	m.ExpireOverdue()

	tmpl, ok := m.catalog.ChallengeTemplate(templateID)
	if !ok {
		m.s.reject("challenge activation", "unknown template", "template", templateID)
		return nil
	}
	if !m.registry.Meets(tmpl.Prerequisites) {
		m.s.reject("challenge activation", "prerequisites unmet", "template", templateID)
		return nil
	}
	for _, c := range m.s.state.Challenges.Active {
		if c.TemplateID == templateID {
			m.s.reject("challenge activation", "already active", "template", templateID)
			return nil
		}
	}

	cfg := tmpl.Config.Merge(o)
	if err := validate.Struct(cfg); err != nil {
		m.s.reject("challenge activation", "invalid configuration", "template", templateID, "error", err)
		return nil
	}
	kind := tmpl.Kind
	if kind == "" {
		kind = tmpl.ID
	}
	if m.adaptive && cfg.Adaptive {
		cfg.Objective = AdaptObjective(cfg.Objective, m.s.state.Challenges.History[kind])
	}

	now := m.s.now()
	inst := domain.ChallengeInstance{
		ID:         uuid.NewString(),
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Kind:       kind,
		Config:     cfg,
		Reward:     tmpl.Reward.Clone(),
		StartedAt:  now,
		Deadline:   now.Add(cfg.Duration),
		State:      domain.ChallengeActive,
		Stats:      domain.NewChallengeStats(),
	}
	m.s.state.Challenges.Active = append(m.s.state.Challenges.Active, inst)
	m.s.touch()

	out := inst.Clone()
	return &out
}

// RecordProgress offers ev to the instance. Returns false when the instance
// is not active, its deadline has passed (failing it), or ev does not pass
// the instance's validation.
func (m *ChallengeManager) RecordProgress(instanceID string, ev domain.ActivityEvent) bool {
	idx := m.indexActive(instanceID)
	if idx < 0 {
		m.s.reject("challenge progress", "instance not active", "instance", instanceID)
		return false
	}
	if !m.s.now().Before(m.s.state.Challenges.Active[idx].Deadline) {
		m.fail(idx, domain.FailExpired)
		m.s.reject("challenge progress", "deadline passed", "instance", instanceID)
		return false
	}

	inst := &m.s.state.Challenges.Active[idx]
	if reason := m.mismatch(inst, ev); reason != "" {
		m.s.reject("challenge progress", reason, "instance", instanceID, "kind", ev.Kind)
		return false
	}

	inst.Progress++
	inst.Stats.CategoriesSeen[ev.Kind]++
	if z := ev.Context.Zone; z != "" {
		inst.Stats.Zones[z]++
	}
	if subj := ev.Context.Subject; subj != "" {
		inst.Stats.Subjects = append(inst.Stats.Subjects, subj)
	}
	inst.Stats.MatchedAt = append(inst.Stats.MatchedAt, ev.At)
	m.s.touch()
	m.s.out.ChallengesProgressed = append(m.s.out.ChallengesProgressed, instanceID)

	if inst.Progress >= inst.Config.Objective {
		m.complete(idx)
	}
	return true
}

// Abandon moves an active instance to failed with reason abandoned.
func (m *ChallengeManager) Abandon(instanceID string) bool {
	idx := m.indexActive(instanceID)
	if idx < 0 {
		m.s.reject("challenge abandon", "instance not active", "instance", instanceID)
		return false
	}
	if !m.s.now().Before(m.s.state.Challenges.Active[idx].Deadline) {
		m.fail(idx, domain.FailExpired)
		return false
	}
	m.fail(idx, domain.FailAbandoned)
	return true
}

// ExpireOverdue fails every active instance whose deadline has passed.
// Returns how many expired.
func (m *ChallengeManager) ExpireOverdue() int {
	now := m.s.now()
	n := 0
	for i := 0; i < len(m.s.state.Challenges.Active); {
		if !now.Before(m.s.state.Challenges.Active[i].Deadline) {
			m.fail(i, domain.FailExpired)
			n++
			continue
		}
		i++
	}
	return n
}

// activeIDs returns the ids of active instances in activation order.
func (m *ChallengeManager) activeIDs() []string {
	ids := make([]string, len(m.s.state.Challenges.Active))
	for i, c := range m.s.state.Challenges.Active {
		ids[i] = c.ID
	}
	return ids
}

func (m *ChallengeManager) indexActive(instanceID string) int {
	for i, c := range m.s.state.Challenges.Active {
		if c.ID == instanceID {
			return i
		}
	}
	return -1
}

// mismatch returns why ev fails the instance's validation, or "".
func (m *ChallengeManager) mismatch(inst *domain.ChallengeInstance, ev domain.ActivityEvent) string {
	cfg := inst.Config
	switch {
	case !ev.Kind.Valid():
		return "unknown event kind"
	case ev.At.IsZero():
		return "missing timestamp"
	case ev.At.Before(inst.StartedAt):
		return "event predates activation"
	case !ev.At.Before(inst.Deadline):
		return "event after deadline"
	case len(cfg.Categories) > 0 && !contains(cfg.Categories, ev.Kind):
		return "category not eligible"
	case len(cfg.Zones) > 0 && !contains(cfg.Zones, ev.Context.Zone):
		return "zone not eligible"
	case cfg.TimeWindow != nil && !cfg.TimeWindow.Contains(m.s.local(ev.At).Hour()):
		return "outside time window"
	case cfg.MinQuality != "" && ev.Context.Quality.Rank() < cfg.MinQuality.Rank():
		return "below quality floor"
	}
	if cfg.DistinctSubjects {
		if ev.Context.Subject == "" {
			return "subject required"
		}
		if contains(inst.Stats.Subjects, ev.Context.Subject) {
			return "subject already counted"
		}
	}
	return ""
}

// complete resolves the active instance at idx and grants its reward.
func (m *ChallengeManager) complete(idx int) {
	inst := m.takeActive(idx)
	now := m.s.now()
	inst.State = domain.ChallengeCompleted
	inst.ResolvedAt = &now
	reward := inst.Reward.Points
	if reward <= 0 {
		reward = DefaultChallengeReward
	}
	inst.Granted = m.ledger.grant(domain.PointsChallengeReward, reward)

	m.s.state.Challenges.Completed = append(m.s.state.Challenges.Completed, inst)
	m.s.state.Statistics.ChallengesCompleted++
	m.pushHistory(inst.Kind, true)
	m.s.touch()
	m.s.out.ChallengesCompleted = append(m.s.out.ChallengesCompleted, inst.ID)

	if item := inst.Reward.RareItem; item != nil && rareEarned(inst, now) {
		m.collection.Add(item.Type, item.ItemID, "", true)
	}
	m.s.obs.challengeResolved(inst.Clone())
}

// fail resolves the active instance at idx as failed.
func (m *ChallengeManager) fail(idx int, reason domain.FailReason) {
	inst := m.takeActive(idx)
	now := m.s.now()
	inst.State = domain.ChallengeFailed
	inst.FailReason = reason
	inst.ResolvedAt = &now

	m.s.state.Challenges.Failed = append(m.s.state.Challenges.Failed, inst)
	m.s.state.Statistics.ChallengesFailed++
	m.pushHistory(inst.Kind, false)
	m.s.touch()
	m.s.out.ChallengesFailed = append(m.s.out.ChallengesFailed, inst.ID)
	m.s.obs.challengeResolved(inst.Clone())
}

func (m *ChallengeManager) takeActive(idx int) domain.ChallengeInstance {
	active := m.s.state.Challenges.Active
	inst := active[idx]
	m.s.state.Challenges.Active = append(active[:idx:idx], active[idx+1:]...)
	return inst
}

func (m *ChallengeManager) pushHistory(kind string, won bool) {
	h := append(m.s.state.Challenges.History[kind], won)
	if len(h) > HistoryLimit {
		h = h[len(h)-HistoryLimit:]
	}
	m.s.state.Challenges.History[kind] = h
}

// rareEarned reports whether a completion at now qualifies for the rare item.
func rareEarned(inst domain.ChallengeInstance, now time.Time) bool {
	if inst.Reward.RareWithin <= 0 {
		return true
	}
	limit := time.Duration(float64(inst.Config.Duration) * inst.Reward.RareWithin)
	return now.Sub(inst.StartedAt) <= limit
}
