package progression

import (
	"math"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
)

// ─── Leveling Formula ───────────────────────────────────────────────────────

const (
	// BaseThreshold is the experience needed to leave level 1.
	BaseThreshold = 100
	// ThresholdGrowth scales each next level's threshold.
	ThresholdGrowth = 1.5
	// MaxLevel caps leveling; experience is pinned below the threshold there.
	MaxLevel = 60
	// LevelBonusPerLevel is credited as level × this on each level gained.
	LevelBonusPerLevel = 10
	// MaxAward caps one point award after multipliers.
	MaxAward int64 = 1000000000000
)

// ThresholdForLevel returns the experience required to advance from level.
// Formula: floor(100 × 1.5^(level-1)).
func ThresholdForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Floor(BaseThreshold * math.Pow(ThresholdGrowth, float64(level-1))))
}

// TotalExperience returns lifetime experience: every threshold already
// passed plus progress within the current level.
func TotalExperience(p domain.Profile) int64 {
	var total int64
	for l := 1; l < p.Level; l++ {
		total += ThresholdForLevel(l)
	}
	return total + p.Experience
}

// ─── Multiplier ─────────────────────────────────────────────────────────────

// Multiplier terms. Each applicable term multiplies the running total.
const (
	StreakStep     = 0.10 // per consecutive day beyond the first
	StreakCap      = 2.00
	LevelStep      = 0.05 // per level above 1
	DawnBonus      = 0.30 // 05:00–07:59
	DuskBonus      = 0.20 // 17:00–19:59
	WeekendBonus   = 0.15
	WeatherBonus   = 0.25
	FirstTimeBonus = 0.50
	QualityBonus   = 0.10 // excellent only
)

// PointContext is the optional context of a point award. Zero fields skip
// their multiplier term.
type PointContext struct {
	At             time.Time
	SpecialWeather bool
	FirstTime      bool
	Quality        domain.Quality
}

// Multiplier computes the contextual multiplier for a point award.
// Terms compose multiplicatively.
func Multiplier(p domain.Profile, pc PointContext, loc *time.Location) float64 {
	m := 1.0
	if p.CurrentStreak > 1 {
		bonus := float64(p.CurrentStreak-1) * StreakStep
		if bonus > StreakCap {
			bonus = StreakCap
		}
		m *= 1 + bonus
	}
	if p.Level > 1 {
		m *= 1 + float64(p.Level-1)*LevelStep
	}
	if !pc.At.IsZero() {
		local := pc.At
		if loc != nil {
			local = pc.At.In(loc)
		}
		switch h := local.Hour(); {
		case h >= 5 && h < 8:
			m *= 1 + DawnBonus
		case h >= 17 && h < 20:
			m *= 1 + DuskBonus
		}
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			m *= 1 + WeekendBonus
		}
	}
	if pc.SpecialWeather {
		m *= 1 + WeatherBonus
	}
	if pc.FirstTime {
		m *= 1 + FirstTimeBonus
	}
	if pc.Quality == domain.QualityExcellent {
		m *= 1 + QualityBonus
	}
	return m
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Ledger owns points, experience, level and streak.
type Ledger struct {
	s *session
}

// AwardPoints applies the contextual multiplier to base, credits the
// category and feeds the result into experience. Returns the amount
// credited, saturated at MaxAward; non-positive bases and unknown
// categories are rejected with 0.
func (l *Ledger) AwardPoints(category domain.PointCategory, base int64, pc PointContext) int64 {
	if base <= 0 {
		l.s.reject("award points", "non-positive base", "category", category, "base", base)
		return 0
	}
	if !category.Valid() {
		l.s.reject("award points", "unknown category", "category", category)
		return 0
	}
	mult := Multiplier(l.s.state.Profile, pc, l.s.loc)
	final := MaxAward
	if raw := float64(base)*mult + 1e-9; raw < float64(MaxAward) {
		final = int64(math.Floor(raw))
	}
	return l.grant(category, final)
}

// AddExperience adds amount to experience and levels up while the
// threshold is reached. Each level gained credits level × 10 bonus points.
func (l *Ledger) AddExperience(amount int64) []LevelChange {
	if amount <= 0 {
		return nil
	}
	p := &l.s.state.Profile
	if headroom := math.MaxInt64 - p.Experience; amount > headroom {
		amount = headroom
	}
	p.Experience += amount
	l.s.touch()

	var changes []LevelChange
	for p.Level < MaxLevel && p.Experience >= ThresholdForLevel(p.Level) {
		p.Experience -= ThresholdForLevel(p.Level)
		prev := p.Level
		p.Level++
		change := LevelChange{From: prev, To: p.Level}
		changes = append(changes, change)
		l.s.out.LevelUps = append(l.s.out.LevelUps, change)

		l.bonus(domain.PointsLevelBonus, int64(p.Level*LevelBonusPerLevel))
		l.s.obs.levelUp(prev, p.Level)
	}
	if p.Level >= MaxLevel {
		if ceiling := ThresholdForLevel(MaxLevel) - 1; p.Experience > ceiling {
			p.Experience = ceiling
		}
	}
	return changes
}

// UpdateStreak records an activity on at's calendar day. The next day
// extends the streak, the same day is a no-op, an earlier day is stale and
// ignored, and any gap resets the streak to 1. Returns whether state changed.
func (l *Ledger) UpdateStreak(at time.Time) bool {
	if at.IsZero() {
		return false
	}
	p := &l.s.state.Profile
	if p.LastActivityDate == nil {
		p.CurrentStreak = 1
	} else {
		switch days := daysBetween(*p.LastActivityDate, at, l.s.loc); {
		case days == 0:
			return false
		case days < 0:
			l.s.reject("streak update", "stale activity date", "at", at)
			return false
		case days == 1:
			p.CurrentStreak++
		default:
			p.CurrentStreak = 1
		}
	}
	d := at
	p.LastActivityDate = &d
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	l.s.touch()
	return true
}

// grant credits points that also count as experience. Returns the amount
// credited.
func (l *Ledger) grant(category domain.PointCategory, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	amount = l.credit(category, amount)
	l.AddExperience(amount)
	return amount
}

// bonus credits flat points that do not count as experience.
func (l *Ledger) bonus(category domain.PointCategory, amount int64) {
	if amount <= 0 {
		return
	}
	l.credit(category, amount)
}

// credit adds amount to category and the total, saturating at
// math.MaxInt64. Category totals never exceed the total, so they cannot
// overflow either. Returns the amount credited.
func (l *Ledger) credit(category domain.PointCategory, amount int64) int64 {
	if headroom := math.MaxInt64 - l.s.state.Profile.TotalPoints; amount > headroom {
		amount = headroom
	}
	if amount <= 0 {
		return 0
	}
	l.s.state.Ledger[category] += amount
	l.s.state.Profile.TotalPoints += amount
	l.s.touch()
	l.s.obs.pointsAwarded(category, amount)
	return amount
}

// daysBetween counts calendar days from a to b in loc.
func daysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
