package progression_test

import (
	"context"
	"testing"
	"time"

	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/infra/catalog"
)

// threeStops declares its waypoints out of order on purpose.
func threeStops(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.Builtin()
	err := c.Apply(catalog.Overlay{Routes: []domain.RouteTemplate{{
		ID:   "three_stops",
		Name: "Three Stops",
		Waypoints: []domain.WaypointTemplate{
			{ID: "c", Order: 2, Name: "C", Required: []domain.EventKind{domain.EventIdentification}},
			{ID: "a", Order: 0, Name: "A", Required: []domain.EventKind{domain.EventSighting}},
			{ID: "b", Order: 1, Name: "B", Required: []domain.EventKind{domain.EventPhoto}},
		},
		Reward:        domain.RewardSpec{Points: 100},
		WaypointBonus: 25,
	}}})
	if err != nil {
		t.Fatalf("apply overlay: %v", err)
	}
	return c
}

func routeEngine(t *testing.T) (*progression.Engine, *fakeClock, *catalog.Catalog) {
	t.Helper()
	c := threeStops(t)
	e, clk, _ := testEngine(t, progression.WithCatalog(c))
	return e, clk, c
}

// ═══════════════════════════════════════════════════════════════════════════
// Start
// ═══════════════════════════════════════════════════════════════════════════

func TestStartRoute_OrdersWaypoints(t *testing.T) {
	e, _, _ := routeEngine(t)
	inst, err := e.StartRoute(context.Background(), "three_stops")
	if err != nil {
		t.Fatal(err)
	}
	if inst == nil {
		t.Fatal("start should succeed")
	}
	want := []string{"a", "b", "c"}
	for i, wp := range inst.Waypoints {
		if wp.ID != want[i] {
			t.Errorf("waypoint %d: expected %s, got %s", i, want[i], wp.ID)
		}
	}
	if inst.Current != 0 {
		t.Errorf("expected pointer 0, got %d", inst.Current)
	}
	if inst.Waypoints[0].State() != domain.WaypointVisited {
		t.Errorf("first waypoint should be visited, got %s", inst.Waypoints[0].State())
	}
	if inst.Waypoints[1].State() != domain.WaypointUnvisited {
		t.Errorf("second waypoint should be unvisited, got %s", inst.Waypoints[1].State())
	}
	if p := inst.NarrativeProgress(); p < 0.333 || p > 0.334 {
		t.Errorf("expected narrative progress 1/3, got %f", p)
	}
	if inst.Deadline != nil {
		t.Error("route without a time limit should have no deadline")
	}
}

func TestStartRoute_Rejections(t *testing.T) {
	e, _, _ := routeEngine(t)
	ctx := context.Background()

	if inst, _ := e.StartRoute(ctx, "missing"); inst != nil {
		t.Error("unknown template should be rejected")
	}
	if inst, _ := e.StartRoute(ctx, "ancient_forest"); inst != nil {
		t.Error("ancient_forest requires level 3")
	}
	if inst, _ := e.StartRoute(ctx, "three_stops"); inst == nil {
		t.Fatal("first start should succeed")
	}
	if inst, _ := e.StartRoute(ctx, "three_stops"); inst != nil {
		t.Error("already active route should be rejected")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Waypoint Progression
// ═══════════════════════════════════════════════════════════════════════════

func TestRecordWaypointActivity_RejectsOutOfOrder(t *testing.T) {
	e, _, _ := routeEngine(t)
	ctx := context.Background()
	inst, _ := e.StartRoute(ctx, "three_stops")

	ok, err := e.RecordWaypointActivity(ctx, inst.ID, domain.EventPhoto, domain.EventContext{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("activity for waypoint b should be rejected while a is current")
	}
	r := view(t, e).Routes.Active[0]
	if r.Current != 0 || r.Waypoints[1].Completed {
		t.Errorf("rejected activity must not move the route, got pointer %d", r.Current)
	}
}

func TestRecordWaypointActivity_CompletesRoute(t *testing.T) {
	e, _, c := routeEngine(t)
	ctx := context.Background()
	inst, _ := e.StartRoute(ctx, "three_stops")

	var progress []float64
	var waypoints []string
	e.Subscribe(progression.ObserverFuncs{
		NarrativeProgress: func(_, wp string, p float64) {
			waypoints = append(waypoints, wp)
			progress = append(progress, p)
		},
	})

	steps := []domain.EventKind{domain.EventSighting, domain.EventPhoto, domain.EventIdentification}
	for i, kind := range steps {
		ok, err := e.RecordWaypointActivity(ctx, inst.ID, kind, domain.EventContext{Subject: "heron"})
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("step %d should be accepted", i)
		}
		if i == 0 {
			r := view(t, e).Routes.Active[0]
			if r.CurrentWaypointID != "b" {
				t.Errorf("expected current waypoint b, got %s", r.CurrentWaypointID)
			}
			if !r.Waypoints[0].Completed || !r.Waypoints[1].Visited {
				t.Error("a should be completed and b visited")
			}
		}
	}

	v := view(t, e)
	if len(v.Routes.Active) != 0 || len(v.Routes.Completed) != 1 {
		t.Fatalf("expected 1 completed route, got active=%d completed=%d", len(v.Routes.Active), len(v.Routes.Completed))
	}
	done := v.Routes.Completed[0]
	if done.State != domain.RouteCompleted || done.NarrativeProgress != 1 {
		t.Errorf("unexpected completed route state=%s progress=%f", done.State, done.NarrativeProgress)
	}
	for _, wp := range done.Waypoints {
		if !wp.Completed {
			t.Errorf("waypoint %s should be completed", wp.ID)
		}
	}
	// 3 waypoint bonuses of 25 plus the 100 route reward.
	if v.Ledger[domain.PointsRouteReward] != 175 {
		t.Errorf("expected 175 route points, got %d", v.Ledger[domain.PointsRouteReward])
	}
	if v.Statistics.RoutesCompleted != 1 || v.Statistics.WaypointsCompleted != 3 {
		t.Errorf("unexpected statistics %+v", v.Statistics)
	}
	if !hasEntry(v, domain.CollectionRelics, "three_stops", true) {
		t.Error("completion should add the route relic")
	}
	if !hasAchievement(v, "first_route") {
		t.Error("first_route should unlock")
	}

	wantProgress := []float64{2.0 / 3.0, 1, 1}
	if len(progress) != len(wantProgress) {
		t.Fatalf("expected %d narrative callbacks, got %d", len(wantProgress), len(progress))
	}
	for i := range wantProgress {
		if d := progress[i] - wantProgress[i]; d > 1e-9 || d < -1e-9 {
			t.Errorf("callback %d: expected %f, got %f", i, wantProgress[i], progress[i])
		}
	}
	if waypoints[0] != "a" || waypoints[1] != "b" {
		t.Errorf("unexpected waypoint callbacks %v", waypoints)
	}

	if again, _ := e.StartRoute(ctx, "three_stops"); again != nil {
		t.Error("completed route should not restart")
	}

	tmpl, _ := c.RouteTemplate("three_stops")
	if tmpl.Waypoints[0].ID != "c" {
		t.Error("template waypoint order must not change")
	}
}

func TestRecordWaypointActivity_MultiRequirement(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx := context.Background()
	inst, _ := e.StartRoute(ctx, "river_trail")
	if inst == nil {
		t.Fatal("river_trail should start")
	}
	if ok, _ := e.RecordWaypointActivity(ctx, inst.ID, domain.EventSighting, domain.EventContext{}); !ok {
		t.Fatal("trailhead sighting rejected")
	}
	// heron_pool needs a sighting and a photo.
	if ok, _ := e.RecordWaypointActivity(ctx, inst.ID, domain.EventSighting, domain.EventContext{}); !ok {
		t.Fatal("heron_pool sighting rejected")
	}
	r := view(t, e).Routes.Active[0]
	if r.CurrentWaypointID != "heron_pool" || r.Waypoints[1].Completed {
		t.Fatal("heron_pool should wait for its photo")
	}
	if ok, _ := e.RecordWaypointActivity(ctx, inst.ID, domain.EventPhoto, domain.EventContext{}); !ok {
		t.Fatal("heron_pool photo rejected")
	}
	if id := view(t, e).Routes.Active[0].CurrentWaypointID; id != "old_bridge" {
		t.Errorf("expected old_bridge, got %s", id)
	}
}

func TestHandleEvent_FeedsActiveRoutes(t *testing.T) {
	e, _, _ := routeEngine(t)
	ctx := context.Background()
	inst, _ := e.StartRoute(ctx, "three_stops")

	out := handle(t, e, event(domain.EventSighting, t0))
	if len(out.WaypointsCompleted) != 1 || out.WaypointsCompleted[0] != "a" {
		t.Errorf("expected waypoint a completed, got %v", out.WaypointsCompleted)
	}
	handle(t, e, event(domain.EventIdentification, t0))
	if r := view(t, e).Routes.Active[0]; r.ID != inst.ID || r.Current != 1 {
		t.Errorf("identification should not advance past b, got pointer %d", r.Current)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Discoveries, Expiry, Abandon
// ═══════════════════════════════════════════════════════════════════════════

func TestRecordDiscovery(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx := context.Background()
	inst, _ := e.StartRoute(ctx, "river_trail")

	ok, err := e.RecordDiscovery(ctx, inst.ID, domain.Discovery{ID: "kingfisher_nest", Name: "Kingfisher Nest", Rarity: domain.RarityRare})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("discovery should be accepted")
	}
	if ok, _ := e.RecordDiscovery(ctx, inst.ID, domain.Discovery{}); ok {
		t.Error("discovery without an id should be rejected")
	}

	v := view(t, e)
	r := v.Routes.Active[0]
	if len(r.Discoveries) != 1 {
		t.Fatalf("expected 1 discovery, got %d", len(r.Discoveries))
	}
	d := r.Discoveries[0]
	if d.Points != 50 || d.WaypointID != "trailhead" || !d.FoundAt.Equal(t0) {
		t.Errorf("unexpected discovery %+v", d)
	}
	if r.Current != 0 {
		t.Error("discoveries must not advance waypoints")
	}
	if v.Ledger[domain.PointsDiscoveryBonus] != 50 {
		t.Errorf("expected 50 discovery points, got %d", v.Ledger[domain.PointsDiscoveryBonus])
	}
	if !hasEntry(v, domain.CollectionDiscoveries, "kingfisher_nest", true) {
		t.Error("rare discovery should be collected as rare")
	}
	if !hasAchievement(v, "first_discovery") {
		t.Error("first_discovery should unlock")
	}
}

func TestRoute_TimeLimitExpires(t *testing.T) {
	e, clk, _ := testEngine(t)
	ctx := context.Background()
	if _, err := e.AddExperience(ctx, 250); err != nil {
		t.Fatal(err)
	}
	inst, _ := e.StartRoute(ctx, "ancient_forest")
	if inst == nil {
		t.Fatal("ancient_forest should start at level 3")
	}
	if inst.Deadline == nil || !inst.Deadline.Equal(t0.Add(14*24*time.Hour)) {
		t.Fatalf("expected a 14 day deadline, got %v", inst.Deadline)
	}

	clk.Advance(15 * 24 * time.Hour)
	ok, err := e.RecordWaypointActivity(ctx, inst.ID, domain.EventExploration, domain.EventContext{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("activity on an expired route should be rejected")
	}
	v := view(t, e)
	if len(v.Routes.Failed) != 1 || v.Routes.Failed[0].FailReason != domain.FailExpired {
		t.Errorf("expected one expired route, got %+v", v.Routes.Failed)
	}
}

func TestAbandonRoute(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx := context.Background()
	inst, _ := e.StartRoute(ctx, "coastal_path")
	ok, err := e.AbandonRoute(ctx, inst.ID)
	if err != nil || !ok {
		t.Fatalf("abandon failed: ok=%v err=%v", ok, err)
	}
	if ok, _ := e.AbandonRoute(ctx, inst.ID); ok {
		t.Error("abandoning twice should be rejected")
	}
	v := view(t, e)
	if len(v.Routes.Failed) != 1 || v.Routes.Failed[0].FailReason != domain.FailAbandoned {
		t.Errorf("expected one abandoned route, got %+v", v.Routes.Failed)
	}
	if again, _ := e.StartRoute(ctx, "coastal_path"); again == nil {
		t.Error("an abandoned route may be restarted")
	}
}
