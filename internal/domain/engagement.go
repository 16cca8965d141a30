package domain

import "time"

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatMilestone   AchievementCategory = "milestone"
	CatLevel       AchievementCategory = "level"
	CatStreak      AchievementCategory = "streak"
	CatChallenge   AchievementCategory = "challenge"
	CatCollection  AchievementCategory = "collection"
	CatExploration AchievementCategory = "exploration"
	CatFieldCraft  AchievementCategory = "field_craft"
)

// AchievementDef is the display metadata of an achievement id.
type AchievementDef struct {
	ID           string              `json:"id" yaml:"id" validate:"required"`
	Name         string              `json:"name" yaml:"name" validate:"required"`
	Description  string              `json:"description" yaml:"description"`
	Category     AchievementCategory `json:"category" yaml:"category"`
	RewardPoints int64               `json:"reward_points" yaml:"reward_points" validate:"gte=0"`
}

// Achievement is an unlocked achievement. UnlockedAt never changes once set.
type Achievement struct {
	ID           string              `json:"id" validate:"required"`
	DisplayName  string              `json:"display_name"`
	Description  string              `json:"description"`
	Category     AchievementCategory `json:"category"`
	UnlockedAt   *time.Time          `json:"unlocked_at,omitempty"`
	RewardPoints int64               `json:"reward_points" validate:"gte=0"`
}

// Unlocked reports whether the achievement carries an unlock timestamp.
func (a Achievement) Unlocked() bool {
	return a.UnlockedAt != nil
}

// Clone returns a copy that shares no pointers with a.
func (a Achievement) Clone() Achievement {
	if a.UnlockedAt != nil {
		t := *a.UnlockedAt
		a.UnlockedAt = &t
	}
	return a
}

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyAchievement       NotificationType = "achievement"
	NotifyLevelUp           NotificationType = "level_up"
	NotifyChallengeComplete NotificationType = "challenge_complete"
	NotifyWaypoint          NotificationType = "waypoint"
)

// Notification is a user-facing message in a user's inbox.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// NotificationPolicy governs how often notifications are created.
type NotificationPolicy struct {
	MaxPerDay  int    `json:"max_per_day" toml:"max_per_day" env:"MAX_PER_DAY"`
	QuietStart string `json:"quiet_start" toml:"quiet_start" env:"QUIET_START"` // "22:00"
	QuietEnd   string `json:"quiet_end" toml:"quiet_end" env:"QUIET_END"`       // "07:00"
}

// DefaultNotificationPolicy keeps the inbox calm: a few per day, none at night.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		MaxPerDay:  3,
		QuietStart: "22:00",
		QuietEnd:   "07:00",
	}
}
