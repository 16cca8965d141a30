package progression

import (
	"github.com/wildtrail/wildtrail/internal/domain"
)

// AchievementBonus is credited on unlock when no reward is specified.
const AchievementBonus = 50

// Registry records one-time achievement unlocks.
type Registry struct {
	s       *session
	ledger  *Ledger
	catalog Catalog
}

// Unlock records the achievement, credits its reward and unlocks any
// chained achievements that become eligible. Returns false when id is
// empty or already unlocked. A non-positive reward falls back to the
// catalog's reward, then to AchievementBonus.
func (r *Registry) Unlock(id, description string, reward int64) bool {
	if id == "" {
		return false
	}
	if r.IsUnlocked(id) {
		return false
	}

	a := domain.Achievement{ID: id, DisplayName: id, Description: description, Category: domain.CatMilestone}
	if def, ok := r.catalog.Achievement(id); ok {
		a.DisplayName = def.Name
		a.Category = def.Category
		if a.Description == "" {
			a.Description = def.Description
		}
		if reward <= 0 {
			reward = def.RewardPoints
		}
	}
	if reward <= 0 {
		reward = AchievementBonus
	}
	now := r.s.now()
	a.UnlockedAt = &now
	a.RewardPoints = reward

	r.s.state.Achievements = append(r.s.state.Achievements, a)
	r.s.touch()
	r.s.out.Unlocked = append(r.s.out.Unlocked, id)
	r.ledger.bonus(domain.PointsAchievementBonus, reward)
	r.s.obs.achievementUnlocked(a.Clone())

	r.unlockChained(id)
	return true
}

// IsUnlocked reports whether id has been unlocked.
func (r *Registry) IsUnlocked(id string) bool {
	for _, a := range r.s.state.Achievements {
		if a.ID == id && a.Unlocked() {
			return true
		}
	}
	return false
}

// EvaluateThresholdFamilies walks every threshold table and unlocks each
// satisfied entry. Returns the ids unlocked directly from the tables.
func (r *Registry) EvaluateThresholdFamilies() []string {
	st := &r.s.state
	var unlocked []string
	check := func(value int64, table ThresholdTable) {
		for _, id := range table.Satisfied(value) {
			if r.Unlock(id, "", 0) {
				unlocked = append(unlocked, id)
			}
		}
	}

	check(st.Profile.TotalPoints, PointThresholds)
	check(int64(st.Profile.Level), LevelThresholds)
	check(int64(st.Profile.LongestStreak), StreakThresholds)
	check(int64(st.Statistics.ChallengesCompleted), ChallengeThresholds)
	check(int64(len(st.Collection)), CollectionThresholds)
	check(int64(st.Statistics.RoutesCompleted), RouteThresholds)
	check(int64(st.Statistics.Discoveries), DiscoveryThresholds)
	for _, kind := range domain.EventKinds() {
		check(int64(st.Statistics.Events[kind]), EventThresholds[kind])
	}
	return unlocked
}

// Meets reports whether the profile satisfies p.
func (r *Registry) Meets(p domain.Prerequisites) bool {
	prof := r.s.state.Profile
	if prof.Level < p.MinLevel {
		return false
	}
	if p.MinExperience > 0 && TotalExperience(prof) < p.MinExperience {
		return false
	}
	for _, id := range p.Achievements {
		if !r.IsUnlocked(id) {
			return false
		}
	}
	return true
}

func (r *Registry) unlockChained(id string) {
	for _, rule := range ChainRules {
		if !contains(rule.Requires, id) {
			continue
		}
		if r.allUnlocked(rule.Requires) {
			r.Unlock(rule.AchievementID, "", 0)
		}
	}
}

func (r *Registry) allUnlocked(ids []string) bool {
	for _, id := range ids {
		if !r.IsUnlocked(id) {
			return false
		}
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
