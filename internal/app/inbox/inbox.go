// Package inbox turns progression callbacks into user notifications.
//
// Policy:
//   - At most MaxPerDay notifications per user per local calendar day
//   - Nothing is created between QuietStart and QuietEnd (local time)
//   - Only achievements, level-ups, completed challenges and route
//     waypoints notify; points never do
package inbox

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/infra/sqlite"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// Service gates notifications through the policy and stores them.
type Service struct {
	db     *sqlite.DB
	policy domain.NotificationPolicy
	loc    *time.Location
	now    func() time.Time
	log    *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the timezone quiet hours and days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for suppressed or failed notifications.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a notification service with the given policy.
func New(db *sqlite.DB, policy domain.NotificationPolicy, opts ...Option) *Service {
	s := &Service{
		db:     db,
		policy: policy,
		loc:    time.UTC,
		now:    time.Now,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores notif if the policy allows it. A zero CreatedAt means now.
// Returns the notification ID (0 if suppressed by policy) and any error.
func (s *Service) Create(notif domain.Notification) (int64, error) {
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = s.now()
	}
	local := notif.CreatedAt.In(s.loc)

	todayCount, err := s.db.NotificationCountSince(notif.UserID, startOfDay(local))
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	if todayCount >= s.policy.MaxPerDay {
		return 0, nil // daily limit reached
	}
	if s.isQuietHour(local) {
		return 0, nil
	}

	notif.Shown = false
	id, err := s.db.InsertNotification(notif)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// Pending returns userID's unshown notifications.
func (s *Service) Pending(userID string, limit int) ([]domain.Notification, error) {
	return s.db.ListPendingNotifications(userID, limit)
}

// MarkShown marks one of userID's notifications as shown. Returns false
// when userID has no notification with that id.
func (s *Service) MarkShown(userID string, id int64) (bool, error) {
	return s.db.MarkNotificationShown(userID, id)
}

// TodayCount returns how many notifications userID received today.
func (s *Service) TodayCount(userID string) (int, error) {
	return s.db.NotificationCountSince(userID, startOfDay(s.now().In(s.loc)))
}

// Policy returns the current notification policy.
func (s *Service) Policy() domain.NotificationPolicy {
	return s.policy
}

// isQuietHour reports whether local falls within quiet hours.
func (s *Service) isQuietHour(local time.Time) bool {
	startHour, startMin := parseHHMM(s.policy.QuietStart)
	endHour, endMin := parseHHMM(s.policy.QuietEnd)

	timeMinutes := local.Hour()*60 + local.Minute()
	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin

	if startMinutes == endMinutes {
		return false
	}
	if startMinutes > endMinutes {
		// wraps midnight, e.g. 22:00 to 07:00
		return timeMinutes >= startMinutes || timeMinutes < endMinutes
	}
	return timeMinutes >= startMinutes && timeMinutes < endMinutes
}

func startOfDay(local time.Time) time.Time {
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}
