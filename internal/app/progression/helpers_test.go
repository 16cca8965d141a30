package progression_test

import (
	"context"
	"testing"
	"time"

	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/domain"
)

// Wednesday 2026-03-11 10:00 UTC: no golden hour, no weekend.
var t0 = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// testEngine opens a strict engine for "alice" on a fresh memory store.
func testEngine(t *testing.T, opts ...progression.Option) (*progression.Engine, *fakeClock, *progression.MemoryStore) {
	t.Helper()
	clk := &fakeClock{now: t0}
	store := progression.NewMemoryStore()
	e := openEngine(t, "alice", store, clk, opts...)
	return e, clk, store
}

func openEngine(t *testing.T, user string, store progression.Store, clk *fakeClock, opts ...progression.Option) *progression.Engine {
	t.Helper()
	all := append([]progression.Option{
		progression.WithClock(clk.Now),
		progression.WithStrictInvariants(true),
	}, opts...)
	e, err := progression.Open(context.Background(), user, store, all...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return e
}

func view(t *testing.T, e *progression.Engine) progression.State {
	t.Helper()
	v, err := e.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	return v
}

func event(kind domain.EventKind, at time.Time) domain.ActivityEvent {
	return domain.ActivityEvent{Kind: kind, At: at}
}

func handle(t *testing.T, e *progression.Engine, ev domain.ActivityEvent) progression.Outcome {
	t.Helper()
	out, err := e.HandleEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	return out
}

func hasAchievement(v progression.State, id string) bool {
	for _, a := range v.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

func intPtr(n int) *int { return &n }
