package progression

import (
	"fmt"
	"strings"

	"github.com/wildtrail/wildtrail/internal/domain"
)

// consistencyProblems lists every cross-field invariant s breaks.
func consistencyProblems(s domain.Snapshot) []string {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	p := s.Profile
	for cat, v := range s.Ledger {
		if !cat.Valid() {
			add("unknown ledger category %q", cat)
		}
		if v < 0 {
			add("negative ledger total for %s", cat)
		}
	}
	if sum := s.Ledger.Sum(); sum != p.TotalPoints {
		add("ledger sums to %d but total points is %d", sum, p.TotalPoints)
	}
	if p.Level < 1 || p.Level > MaxLevel {
		add("level %d out of range", p.Level)
	}
	if p.Experience < 0 || p.Experience >= ThresholdForLevel(p.Level) {
		add("experience %d not below level %d threshold", p.Experience, p.Level)
	}

	seen := make(map[string]bool, len(s.Achievements))
	for _, a := range s.Achievements {
		if seen[a.ID] {
			add("achievement %s unlocked twice", a.ID)
		}
		seen[a.ID] = true
		if !a.Unlocked() {
			add("achievement %s has no unlock time", a.ID)
		}
	}

	checkChallenges := func(book []domain.ChallengeInstance, want domain.ChallengeState) {
		for _, c := range book {
			if c.State != want {
				add("challenge %s in %s bucket has state %s", c.ID, want, c.State)
			}
			if c.Progress < 0 {
				add("challenge %s has negative progress", c.ID)
			}
			if want == domain.ChallengeActive && c.Progress >= c.Config.Objective {
				add("active challenge %s reached its objective", c.ID)
			}
		}
	}
	checkChallenges(s.Challenges.Active, domain.ChallengeActive)
	checkChallenges(s.Challenges.Completed, domain.ChallengeCompleted)
	checkChallenges(s.Challenges.Failed, domain.ChallengeFailed)

	checkRoutes := func(book []domain.RouteInstance, want domain.RouteState) {
		for _, r := range book {
			if r.State != want {
				add("route %s in %s bucket has state %s", r.ID, want, r.State)
			}
			if r.Current < 0 || r.Current >= len(r.Waypoints) {
				add("route %s current waypoint %d out of range", r.ID, r.Current)
				continue
			}
			for i, wp := range r.Waypoints {
				if i > 0 && wp.Order < r.Waypoints[i-1].Order {
					add("route %s waypoints out of order", r.ID)
				}
				if i > 0 && wp.Completed && !r.Waypoints[i-1].Completed {
					add("route %s waypoint %s completed before its predecessor", r.ID, wp.ID)
				}
				if wp.Completed && !wp.Visited {
					add("route %s waypoint %s completed without a visit", r.ID, wp.ID)
				}
				if i > r.Current && wp.Visited {
					add("route %s waypoint %s visited ahead of the pointer", r.ID, wp.ID)
				}
			}
			allDone := r.Waypoints[len(r.Waypoints)-1].Completed
			if want == domain.RouteCompleted && !allDone {
				add("route %s completed with open waypoints", r.ID)
			}
			if want == domain.RouteActive && allDone {
				add("route %s active with every waypoint completed", r.ID)
			}
		}
	}
	checkRoutes(s.Routes.Active, domain.RouteActive)
	checkRoutes(s.Routes.Completed, domain.RouteCompleted)
	checkRoutes(s.Routes.Failed, domain.RouteFailed)

	keys := make(map[string]bool, len(s.Collection))
	for _, e := range s.Collection {
		if keys[e.Key()] {
			add("collection entry %s duplicated", e.Key())
		}
		keys[e.Key()] = true
		if e.Quantity < 1 {
			add("collection entry %s has quantity %d", e.Key(), e.Quantity)
		}
	}
	return problems
}

// checkInvariants reports every broken invariant of the live state.
func (e *Engine) checkInvariants() error {
	problems := consistencyProblems(e.s.state)
	for _, problem := range problems {
		e.violation(problem)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvariantViolated, strings.Join(problems, "; "))
	}
	return nil
}

// violation panics in strict mode and logs at error otherwise.
func (e *Engine) violation(msg string, kv ...interface{}) {
	if e.strict {
		panic(fmt.Sprintf("progression invariant violated: %s", msg))
	}
	e.log.Error("progression invariant violated", append([]interface{}{"user_id", e.userID, "violation", msg}, kv...)...)
}
