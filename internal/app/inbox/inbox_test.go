package inbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/wildtrail/wildtrail/internal/app/inbox"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/infra/sqlite"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func noon() time.Time {
	return time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
}

// ═══════════════════════════════════════════════════════════════════════════
// Policy
// ═══════════════════════════════════════════════════════════════════════════

func TestCreate(t *testing.T) {
	svc := inbox.New(testDB(t), domain.NotificationPolicy{MaxPerDay: 1, QuietStart: "22:00", QuietEnd: "07:00"})
	id, err := svc.Create(domain.Notification{
		UserID:    "alice",
		Type:      domain.NotifyAchievement,
		Title:     "Achievement unlocked: First Sighting",
		CreatedAt: noon(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero ID")
	}
}

func TestCreate_DailyLimitPerUser(t *testing.T) {
	svc := inbox.New(testDB(t), domain.NotificationPolicy{MaxPerDay: 1, QuietStart: "23:00", QuietEnd: "05:00"})

	first := domain.Notification{UserID: "alice", Type: domain.NotifyLevelUp, Title: "First", CreatedAt: noon()}
	if id, _ := svc.Create(first); id == 0 {
		t.Fatal("first should succeed")
	}

	second := first
	second.Title = "Second"
	second.CreatedAt = noon().Add(time.Hour)
	id, err := svc.Create(second)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if id != 0 {
		t.Error("second should be suppressed (daily limit)")
	}

	other := first
	other.UserID = "bob"
	if id, _ := svc.Create(other); id == 0 {
		t.Error("the limit is per user")
	}

	tomorrow := first
	tomorrow.CreatedAt = noon().Add(24 * time.Hour)
	if id, _ := svc.Create(tomorrow); id == 0 {
		t.Error("a new day should reset the limit")
	}
}

func TestCreate_QuietHours(t *testing.T) {
	svc := inbox.New(testDB(t), domain.NotificationPolicy{MaxPerDay: 5, QuietStart: "22:00", QuietEnd: "07:00"})
	tests := []struct {
		name       string
		at         time.Time
		suppressed bool
	}{
		{"after midnight", time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC), true},
		{"late evening", time.Date(2026, 3, 11, 23, 0, 0, 0, time.UTC), true},
		{"quiet end is open", time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC), false},
		{"afternoon", time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		id, err := svc.Create(domain.Notification{UserID: "alice", Type: domain.NotifyWaypoint, Title: tt.name, CreatedAt: tt.at})
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if (id == 0) != tt.suppressed {
			t.Errorf("%s: expected suppressed=%v, got id %d", tt.name, tt.suppressed, id)
		}
	}
}

func TestCreate_QuietHoursUseLocation(t *testing.T) {
	// 03:00 UTC is 22:00 at UTC-5.
	svc := inbox.New(testDB(t),
		domain.NotificationPolicy{MaxPerDay: 5, QuietStart: "22:00", QuietEnd: "07:00"},
		inbox.WithLocation(time.FixedZone("UTC-5", -5*3600)),
	)
	id, _ := svc.Create(domain.Notification{
		UserID:    "alice",
		Type:      domain.NotifyLevelUp,
		Title:     "late",
		CreatedAt: time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC),
	})
	if id != 0 {
		t.Error("expected suppression at 22:00 local time")
	}
}

func TestPendingAndMarkShown(t *testing.T) {
	svc := inbox.New(testDB(t), domain.DefaultNotificationPolicy(), inbox.WithClock(noon))
	for _, title := range []string{"a", "b"} {
		if _, err := svc.Create(domain.Notification{UserID: "alice", Type: domain.NotifyAchievement, Title: title}); err != nil {
			t.Fatal(err)
		}
	}
	pending, err := svc.Pending("alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if n, _ := svc.TodayCount("alice"); n != 2 {
		t.Errorf("expected 2 today, got %d", n)
	}
	if ok, _ := svc.MarkShown("bob", pending[0].ID); ok {
		t.Error("bob must not mark alice's notification")
	}
	if ok, err := svc.MarkShown("alice", pending[0].ID); err != nil || !ok {
		t.Fatalf("MarkShown = %v, %v", ok, err)
	}
	if pending, _ = svc.Pending("alice", 10); len(pending) != 1 {
		t.Errorf("expected 1 pending, got %d", len(pending))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Observer
// ═══════════════════════════════════════════════════════════════════════════

func TestObserver_NotifiesMilestones(t *testing.T) {
	svc := inbox.New(testDB(t),
		domain.NotificationPolicy{MaxPerDay: 10, QuietStart: "22:00", QuietEnd: "07:00"},
		inbox.WithClock(noon),
	)
	e, err := progression.Open(context.Background(), "alice", progression.NewMemoryStore(),
		progression.WithClock(noon),
		progression.WithObserver(svc.Observer("alice")),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.HandleEvent(context.Background(), domain.ActivityEvent{Kind: domain.EventSighting, At: noon()}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddExperience(context.Background(), 100); err != nil {
		t.Fatal(err)
	}

	pending, err := svc.Pending("alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	types := make(map[domain.NotificationType]int)
	for _, n := range pending {
		types[n.Type]++
	}
	if types[domain.NotifyAchievement] == 0 {
		t.Error("expected an achievement notification for first_sighting")
	}
	if types[domain.NotifyLevelUp] != 1 {
		t.Errorf("expected one level-up notification, got %d", types[domain.NotifyLevelUp])
	}
}

func TestObserver_SkipsFailedChallenges(t *testing.T) {
	svc := inbox.New(testDB(t), domain.DefaultNotificationPolicy(), inbox.WithClock(noon))
	o := svc.Observer("alice")
	o.OnChallengeResolved(domain.ChallengeInstance{Name: "Dawn Chorus", State: domain.ChallengeFailed})
	o.OnPointsAwarded(domain.PointsSighting, 10)
	if pending, _ := svc.Pending("alice", 10); len(pending) != 0 {
		t.Errorf("expected no notifications, got %d", len(pending))
	}
}
