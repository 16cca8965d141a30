package progression

import (
	"sort"

	"github.com/google/uuid"

	"github.com/wildtrail/wildtrail/internal/domain"
)

const (
	// DefaultWaypointBonus is granted per completed waypoint when the
	// template does not set one.
	DefaultWaypointBonus = 25
	// DiscoveryBasePoints is scaled by the discovery's rarity multiplier.
	DiscoveryBasePoints = 10
)

// RouteTracker owns route instances and waypoint progression.
type RouteTracker struct {
	s          *session
	ledger     *Ledger
	registry   *Registry
	collection *Collection
	catalog    Catalog
}

// Start instantiates routeTemplateID with a private copy of its waypoints,
// ordered by Order, and marks the first one visited. Returns nil when the
// template is unknown, prerequisites are unmet, or the template is already
// active or completed.
func (t *RouteTracker) Start(routeTemplateID string) *domain.RouteInstance {
	t.ExpireOverdue()

	tmpl, ok := t.catalog.RouteTemplate(routeTemplateID)
	if !ok {
		t.s.reject("route start", "unknown template", "template", routeTemplateID)
		return nil
	}
	if len(tmpl.Waypoints) == 0 {
		t.s.reject("route start", "template has no waypoints", "template", routeTemplateID)
		return nil
	}
	if !t.registry.Meets(tmpl.Prerequisites) {
		t.s.reject("route start", "prerequisites unmet", "template", routeTemplateID)
		return nil
	}
	for _, r := range t.s.state.Routes.Active {
		if r.TemplateID == routeTemplateID {
			t.s.reject("route start", "already active", "template", routeTemplateID)
			return nil
		}
	}
	for _, r := range t.s.state.Routes.Completed {
		if r.TemplateID == routeTemplateID {
			t.s.reject("route start", "already completed", "template", routeTemplateID)
			return nil
		}
	}

	now := t.s.now()
	wps := make([]domain.Waypoint, len(tmpl.Waypoints))
	for i, wt := range tmpl.Waypoints {
		wps[i] = domain.Waypoint{
			ID:        wt.ID,
			Order:     wt.Order,
			Name:      wt.Name,
			Narrative: wt.Narrative,
			Required:  append([]domain.EventKind(nil), wt.Required...),
			Recorded:  make(map[domain.EventKind]int),
		}
	}
	sort.SliceStable(wps, func(i, j int) bool { return wps[i].Order < wps[j].Order })
	wps[0].Visited = true
	wps[0].VisitedAt = &now

	bonus := tmpl.WaypointBonus
	if bonus <= 0 {
		bonus = DefaultWaypointBonus
	}
	inst := domain.RouteInstance{
		ID:            uuid.NewString(),
		TemplateID:    tmpl.ID,
		Name:          tmpl.Name,
		Waypoints:     wps,
		State:         domain.RouteActive,
		Reward:        tmpl.Reward.Clone(),
		WaypointBonus: bonus,
		StartedAt:     now,
	}
	if tmpl.TimeLimit > 0 {
		deadline := now.Add(tmpl.TimeLimit)
		inst.Deadline = &deadline
	}
	t.s.state.Routes.Active = append(t.s.state.Routes.Active, inst)
	t.s.touch()

	out := inst.Clone()
	return &out
}

// RecordWaypointActivity records kind against the current waypoint.
// Returns false when the instance is not active or kind is not required by
// the current waypoint. Completing the current waypoint grants the
// waypoint bonus and advances the pointer; completing the last one
// completes the route.
func (t *RouteTracker) RecordWaypointActivity(instanceID string, kind domain.EventKind, payload domain.EventContext) bool {
	idx := t.activeIndex(instanceID)
	if idx < 0 {
		t.s.reject("waypoint activity", "route not active", "instance", instanceID)
		return false
	}
	inst := &t.s.state.Routes.Active[idx]
	wp := inst.CurrentWaypoint()
	if wp == nil || !wp.Requires(kind) {
		t.s.reject("waypoint activity", "activity not required by current waypoint", "instance", instanceID, "kind", kind)
		return false
	}

	wp.Recorded[kind]++
	if payload.Subject != "" {
		wp.Subjects = append(wp.Subjects, payload.Subject)
	}
	t.s.touch()

	if wp.Completed || !wp.Satisfied() {
		return true
	}

	now := t.s.now()
	wp.Completed = true
	wp.CompletedAt = &now
	t.s.state.Statistics.WaypointsCompleted++
	t.s.out.WaypointsCompleted = append(t.s.out.WaypointsCompleted, wp.ID)
	completedID := wp.ID

	if inst.Current == len(inst.Waypoints)-1 {
		t.ledger.grant(domain.PointsRouteReward, inst.WaypointBonus)
		t.complete(instanceID)
		return true
	}

	inst.Current++
	next := &inst.Waypoints[inst.Current]
	next.Visited = true
	next.VisitedAt = &now
	progress := inst.NarrativeProgress()
	bonus := inst.WaypointBonus

	t.ledger.grant(domain.PointsRouteReward, bonus)
	t.s.obs.narrativeProgress(instanceID, completedID, progress)
	return true
}

// RecordDiscovery attaches a rarity-scored discovery to an active route,
// granting DiscoveryBasePoints × rarity multiplier and a collection entry.
// It never affects waypoint progression.
func (t *RouteTracker) RecordDiscovery(instanceID string, d domain.Discovery) bool {
	idx := t.activeIndex(instanceID)
	if idx < 0 {
		t.s.reject("discovery", "route not active", "instance", instanceID)
		return false
	}
	if d.ID == "" {
		t.s.reject("discovery", "missing discovery id", "instance", instanceID)
		return false
	}
	if d.Rarity == "" {
		d.Rarity = domain.RarityCommon
	}
	if d.FoundAt.IsZero() {
		d.FoundAt = t.s.now()
	}
	inst := &t.s.state.Routes.Active[idx]
	if wp := inst.CurrentWaypoint(); wp != nil {
		d.WaypointID = wp.ID
	}
	d.Points = DiscoveryBasePoints * d.Rarity.Multiplier()

	inst.Discoveries = append(inst.Discoveries, d)
	t.s.state.Statistics.Discoveries++
	t.s.touch()

	t.ledger.grant(domain.PointsDiscoveryBonus, d.Points)
	t.collection.Add(domain.CollectionDiscoveries, d.ID, "", d.Rarity.IsRare())
	return true
}

// Abandon moves an active route to failed with reason abandoned.
func (t *RouteTracker) Abandon(instanceID string) bool {
	idx := t.activeIndex(instanceID)
	if idx < 0 {
		t.s.reject("route abandon", "route not active", "instance", instanceID)
		return false
	}
	t.fail(idx, domain.FailAbandoned)
	return true
}

// ExpireOverdue fails every active route whose time limit has passed.
func (t *RouteTracker) ExpireOverdue() int {
	now := t.s.now()
	n := 0
	for i := 0; i < len(t.s.state.Routes.Active); {
		if dl := t.s.state.Routes.Active[i].Deadline; dl != nil && !now.Before(*dl) {
			t.fail(i, domain.FailExpired)
			n++
			continue
		}
		i++
	}
	return n
}

func (t *RouteTracker) activeIDs() []string {
	ids := make([]string, len(t.s.state.Routes.Active))
	for i, r := range t.s.state.Routes.Active {
		ids[i] = r.ID
	}
	return ids
}

// activeIndex finds an active route, expiring it first when overdue.
func (t *RouteTracker) activeIndex(instanceID string) int {
	for i, r := range t.s.state.Routes.Active {
		if r.ID != instanceID {
			continue
		}
		if r.Deadline != nil && !t.s.now().Before(*r.Deadline) {
			t.fail(i, domain.FailExpired)
			return -1
		}
		return i
	}
	return -1
}

// complete resolves the active route with instanceID and grants its reward.
func (t *RouteTracker) complete(instanceID string) {
	idx := -1
	for i, r := range t.s.state.Routes.Active {
		if r.ID == instanceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	inst := t.takeActive(idx)
	now := t.s.now()
	inst.State = domain.RouteCompleted
	inst.ResolvedAt = &now
	inst.Granted = inst.Reward.Points

	t.s.state.Routes.Completed = append(t.s.state.Routes.Completed, inst)
	t.s.state.Statistics.RoutesCompleted++
	t.s.touch()
	t.s.out.RoutesCompleted = append(t.s.out.RoutesCompleted, inst.ID)

	t.ledger.grant(domain.PointsRouteReward, inst.Reward.Points)
	relic := domain.ItemRef{Type: domain.CollectionRelics, ItemID: inst.TemplateID}
	if inst.Reward.RareItem != nil {
		relic = *inst.Reward.RareItem
	}
	t.collection.Add(relic.Type, relic.ItemID, "", true)
	t.s.obs.narrativeProgress(inst.ID, inst.Waypoints[len(inst.Waypoints)-1].ID, inst.NarrativeProgress())
}

func (t *RouteTracker) fail(idx int, reason domain.FailReason) {
	inst := t.takeActive(idx)
	now := t.s.now()
	inst.State = domain.RouteFailed
	inst.FailReason = reason
	inst.ResolvedAt = &now
	t.s.state.Routes.Failed = append(t.s.state.Routes.Failed, inst)
	t.s.touch()
}

func (t *RouteTracker) takeActive(idx int) domain.RouteInstance {
	active := t.s.state.Routes.Active
	inst := active[idx]
	t.s.state.Routes.Active = append(active[:idx:idx], active[idx+1:]...)
	return inst
}
