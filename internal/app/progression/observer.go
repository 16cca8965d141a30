package progression

import (
	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// Observer receives best-effort notifications of progression changes.
// Observers run synchronously inside engine operations and must not call
// back into the engine.
type Observer interface {
	OnPointsAwarded(category domain.PointCategory, amount int64)
	OnAchievementUnlocked(a domain.Achievement)
	OnLevelUp(previousLevel, newLevel int)
}

// ProgressObserver additionally receives challenge and route events.
type ProgressObserver interface {
	Observer
	OnChallengeResolved(c domain.ChallengeInstance)
	OnNarrativeProgress(routeInstanceID, waypointID string, progress float64)
}

// ObserverFuncs adapts plain functions to ProgressObserver. Nil fields are
// skipped.
type ObserverFuncs struct {
	PointsAwarded       func(category domain.PointCategory, amount int64)
	AchievementUnlocked func(a domain.Achievement)
	LevelUp             func(previousLevel, newLevel int)
	ChallengeResolved   func(c domain.ChallengeInstance)
	NarrativeProgress   func(routeInstanceID, waypointID string, progress float64)
}

func (f ObserverFuncs) OnPointsAwarded(category domain.PointCategory, amount int64) {
	if f.PointsAwarded != nil {
		f.PointsAwarded(category, amount)
	}
}

func (f ObserverFuncs) OnAchievementUnlocked(a domain.Achievement) {
	if f.AchievementUnlocked != nil {
		f.AchievementUnlocked(a)
	}
}

func (f ObserverFuncs) OnLevelUp(previousLevel, newLevel int) {
	if f.LevelUp != nil {
		f.LevelUp(previousLevel, newLevel)
	}
}

func (f ObserverFuncs) OnChallengeResolved(c domain.ChallengeInstance) {
	if f.ChallengeResolved != nil {
		f.ChallengeResolved(c)
	}
}

func (f ObserverFuncs) OnNarrativeProgress(routeInstanceID, waypointID string, progress float64) {
	if f.NarrativeProgress != nil {
		f.NarrativeProgress(routeInstanceID, waypointID, progress)
	}
}

// ─── Subscription List ──────────────────────────────────────────────────────

type subscription struct {
	id int
	o  Observer
}

// hub fans notifications out to subscribers. A panicking observer is
// recovered and logged. While held, notifications queue until release.
type hub struct {
	log     *logger.Logger
	next    int
	subs    []subscription
	holding bool
	held    []func()
}

func (h *hub) subscribe(o Observer) func() {
	id := h.next
	h.next++
	h.subs = append(h.subs, subscription{id: id, o: o})
	return func() {
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

func (h *hub) pointsAwarded(category domain.PointCategory, amount int64) {
	h.each("points_awarded", func(o Observer) { o.OnPointsAwarded(category, amount) })
}

func (h *hub) achievementUnlocked(a domain.Achievement) {
	h.each("achievement_unlocked", func(o Observer) { o.OnAchievementUnlocked(a.Clone()) })
}

func (h *hub) levelUp(prev, next int) {
	h.each("level_up", func(o Observer) { o.OnLevelUp(prev, next) })
}

func (h *hub) challengeResolved(c domain.ChallengeInstance) {
	h.each("challenge_resolved", func(o Observer) {
		if po, ok := o.(ProgressObserver); ok {
			po.OnChallengeResolved(c.Clone())
		}
	})
}

func (h *hub) narrativeProgress(routeInstanceID, waypointID string, progress float64) {
	h.each("narrative_progress", func(o Observer) {
		if po, ok := o.(ProgressObserver); ok {
			po.OnNarrativeProgress(routeInstanceID, waypointID, progress)
		}
	})
}

func (h *hub) each(callback string, fn func(Observer)) {
	if h.holding {
		h.held = append(h.held, func() { h.dispatch(callback, fn) })
		return
	}
	h.dispatch(callback, fn)
}

func (h *hub) dispatch(callback string, fn func(Observer)) {
	subs := append([]subscription(nil), h.subs...)
	for _, s := range subs {
		h.call(callback, s.o, fn)
	}
}

// hold queues notifications until release.
func (h *hub) hold() {
	h.holding = true
	h.held = nil
}

// release delivers the queued notifications when deliver is set and drops
// them otherwise.
func (h *hub) release(deliver bool) {
	pending := h.held
	h.holding, h.held = false, nil
	if !deliver {
		return
	}
	for _, fn := range pending {
		fn()
	}
}

func (h *hub) call(callback string, o Observer, fn func(Observer)) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("observer panicked", "callback", callback, "panic", r)
		}
	}()
	fn(o)
}
