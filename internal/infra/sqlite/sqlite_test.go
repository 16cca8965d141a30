package sqlite

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "state.db")); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	db, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Save(ctx, "alice", []byte(`{"version":1}`)); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	blob, err := db.Load(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != `{"version":1}` {
		t.Errorf("expected saved blob, got %q", blob)
	}
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

func TestSnapshot_LoadMissing(t *testing.T) {
	db := newTestDB(t)
	blob, err := db.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if blob != nil {
		t.Errorf("expected nil blob, got %q", blob)
	}
}

func TestSnapshot_SaveReplaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, v := range []string{"first", "second"} {
		if err := db.Save(ctx, "alice", []byte(v)); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}
	blob, _ := db.Load(ctx, "alice")
	if !bytes.Equal(blob, []byte("second")) {
		t.Errorf("expected second, got %q", blob)
	}
}

func TestSnapshot_Users(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, u := range []string{"carol", "alice", "bob"} {
		if err := db.Save(ctx, u, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}
	users, err := db.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(users) != len(want) {
		t.Fatalf("expected %d users, got %d", len(want), len(users))
	}
	for i := range want {
		if users[i] != want[i] {
			t.Errorf("users[%d] = %s, expected %s", i, users[i], want[i])
		}
	}
}

func TestSnapshot_ClosedDBIsUnavailable(t *testing.T) {
	db := newTestDB(t)
	db.Close()
	if err := db.Save(context.Background(), "alice", []byte("{}")); err == nil {
		t.Error("save on a closed database should fail")
	}
}

// ─── Notifications ──────────────────────────────────────────────────────────

func TestNotifications_InsertAndList(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	for i, title := range []string{"one", "two", "three"} {
		_, err := db.InsertNotification(domain.Notification{
			UserID:    "alice",
			Type:      domain.NotifyAchievement,
			Title:     title,
			Body:      "body",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("InsertNotification() error: %v", err)
		}
	}
	if _, err := db.InsertNotification(domain.Notification{UserID: "bob", Type: domain.NotifyLevelUp, Title: "x", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}

	pending, err := db.ListPendingNotifications("alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(pending))
	}
	if pending[0].Title != "three" {
		t.Errorf("expected newest first, got %s", pending[0].Title)
	}
	if !pending[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("created_at should round-trip, got %v", pending[0].CreatedAt)
	}

	if ok, err := db.MarkNotificationShown("alice", pending[0].ID); err != nil || !ok {
		t.Fatalf("MarkNotificationShown() = %v, %v", ok, err)
	}
	pending, _ = db.ListPendingNotifications("alice", 10)
	if len(pending) != 2 {
		t.Errorf("expected 2 pending after marking, got %d", len(pending))
	}
}

func TestNotifications_MarkShownScopedToUser(t *testing.T) {
	db := newTestDB(t)
	id, err := db.InsertNotification(domain.Notification{UserID: "bob", Type: domain.NotifyLevelUp, Title: "x", CreatedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := db.MarkNotificationShown("alice", id); err != nil || ok {
		t.Errorf("another user's notification must not match, got %v, %v", ok, err)
	}
	if ok, _ := db.MarkNotificationShown("bob", id+100); ok {
		t.Error("unknown ids must not match")
	}
	if pending, _ := db.ListPendingNotifications("bob", 10); len(pending) != 1 {
		t.Errorf("bob's notification should still be pending, got %d", len(pending))
	}
}

func TestNotifications_CountSince(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{day.Add(-time.Hour), day.Add(time.Hour), day.Add(5 * time.Hour)} {
		db.InsertNotification(domain.Notification{UserID: "alice", Type: domain.NotifyWaypoint, Title: "t", CreatedAt: at})
	}
	n, err := db.NotificationCountSince("alice", day)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 today, got %d", n)
	}
	if n, _ := db.NotificationCountSince("bob", day); n != 0 {
		t.Errorf("expected 0 for bob, got %d", n)
	}
}

// ─── Activity Journal ───────────────────────────────────────────────────────

func TestActivity_AppendAndList(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	records := []domain.ActivityRecord{
		{UserID: "alice", Kind: domain.EventSighting, At: base, Accepted: true, Points: 10},
		{UserID: "alice", Kind: domain.EventPhoto, At: base.Add(500 * time.Millisecond), Accepted: true, Points: 15},
		{UserID: "alice", Kind: "dancing", At: base.Add(time.Second), Accepted: false, Reason: "unknown kind"},
		{UserID: "bob", Kind: domain.EventSighting, At: base, Accepted: true, Points: 10},
	}
	for _, r := range records {
		if _, err := db.AppendActivity(r); err != nil {
			t.Fatalf("AppendActivity() error: %v", err)
		}
	}

	got, err := db.ListActivity("alice", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Accepted || got[0].Reason != "unknown kind" {
		t.Errorf("expected the rejected event first, got %+v", got[0])
	}
	if got[1].Kind != domain.EventPhoto || got[1].Points != 15 {
		t.Errorf("unexpected second record %+v", got[1])
	}
	if !got[1].At.Equal(base.Add(500 * time.Millisecond)) {
		t.Errorf("sub-second time should round-trip, got %v", got[1].At)
	}
}
