package progression

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/infra/catalog"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// DefaultMaxEvaluationPasses bounds the achievement fixed-point loop.
const DefaultMaxEvaluationPasses = 16

// Engine composes the progression components for one user. Every mutating
// method ends by re-evaluating achievements, checking invariants and saving
// the snapshot when anything changed.
type Engine struct {
	userID    string
	store     Store
	catalog   Catalog
	log       *logger.Logger
	strict    bool
	adaptive  bool
	maxPasses int
	observers []Observer

	s *session
	// good is the last state known to be consistent and persisted.
	good domain.Snapshot

	ledger     *Ledger
	registry   *Registry
	challenges *ChallengeManager
	routes     *RouteTracker
	collection *Collection
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.s.now = now }
}

// WithLocation sets the timezone calendar days and golden hours use.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.s.loc = loc
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithAdaptiveDifficulty toggles objective scaling for adaptive templates.
func WithAdaptiveDifficulty(on bool) Option {
	return func(e *Engine) { e.adaptive = on }
}

// WithStrictInvariants makes invariant violations panic.
func WithStrictInvariants(on bool) Option {
	return func(e *Engine) { e.strict = on }
}

// WithMaxEvaluationPasses bounds the achievement fixed-point loop.
func WithMaxEvaluationPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithObserver subscribes o before the snapshot is loaded.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// Open loads userID's snapshot from store, or starts from defaults when
// there is none or it has an incompatible version.
func Open(ctx context.Context, userID string, store Store, opts ...Option) (*Engine, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	e := &Engine{
		userID:    userID,
		store:     store,
		catalog:   catalog.Builtin(),
		log:       logger.Nop(),
		adaptive:  true,
		maxPasses: DefaultMaxEvaluationPasses,
		s: &session{
			userID: userID,
			now:    time.Now,
			loc:    time.UTC,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("user_id", userID)
	e.s.log = e.log
	e.s.obs = &hub{log: e.log}
	e.s.out = &Outcome{}
	for _, o := range e.observers {
		e.s.obs.subscribe(o)
	}

	e.ledger = &Ledger{s: e.s}
	e.collection = &Collection{s: e.s, catalog: e.catalog}
	e.registry = &Registry{s: e.s, ledger: e.ledger, catalog: e.catalog}
	e.challenges = &ChallengeManager{
		s: e.s, ledger: e.ledger, registry: e.registry,
		collection: e.collection, catalog: e.catalog, adaptive: e.adaptive,
	}
	e.routes = &RouteTracker{
		s: e.s, ledger: e.ledger, registry: e.registry,
		collection: e.collection, catalog: e.catalog,
	}

	if err := e.load(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) load(ctx context.Context) error {
	blob, err := e.store.Load(ctx, e.userID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if blob == nil {
		e.s.state = domain.NewSnapshot(e.userID)
		e.good = e.s.state.Clone()
		return nil
	}
	snap, err := DecodeSnapshot(blob)
	switch {
	case errors.Is(err, domain.ErrSnapshotVersion):
		e.log.Warn("ignoring snapshot with incompatible version", "error", err)
		e.s.state = domain.NewSnapshot(e.userID)
		e.good = e.s.state.Clone()
		return nil
	case err != nil:
		return fmt.Errorf("load snapshot: %w", err)
	}
	snap.UserID = e.userID
	e.s.state = snap
	e.good = snap.Clone()
	return nil
}

// UserID returns the user this engine serves.
func (e *Engine) UserID() string {
	return e.userID
}

// Subscribe attaches an observer. The returned function detaches it.
func (e *Engine) Subscribe(o Observer) func() {
	return e.s.obs.subscribe(o)
}

// ─── Operation Lifecycle ────────────────────────────────────────────────────

// begin resets the per-operation outcome.
func (e *Engine) begin() *Outcome {
	out := &Outcome{Accepted: true}
	e.s.out = out
	return out
}

// commit settles achievements, checks invariants and saves when dirty.
// Inconsistent state is never saved: outside strict mode the engine rolls
// back to the last good state and returns ErrInvariantViolated.
func (e *Engine) commit(ctx context.Context) error {
	if !e.s.dirty {
		return nil
	}
	e.settle()
	if err := e.checkInvariants(); err != nil {
		e.s.state, e.s.dirty = e.good.Clone(), false
		return err
	}
	return e.save(ctx)
}

// settle re-evaluates threshold families until nothing new unlocks.
func (e *Engine) settle() {
	for pass := 0; pass < e.maxPasses; pass++ {
		if len(e.registry.EvaluateThresholdFamilies()) == 0 {
			return
		}
	}
	e.log.Warn("achievement evaluation hit pass limit", "passes", e.maxPasses)
}

func (e *Engine) save(ctx context.Context) error {
	e.s.state.Version = domain.SnapshotVersion
	e.s.state.UserID = e.userID
	e.s.state.SavedAt = e.s.now()
	blob, err := EncodeSnapshot(e.s.state)
	if err != nil {
		return err
	}
	if err := e.store.Save(ctx, e.userID, blob); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	e.s.dirty = false
	e.good = e.s.state.Clone()
	return nil
}

// ─── Ledger Operations ──────────────────────────────────────────────────────

// AwardPoints credits base × contextual multiplier to category.
func (e *Engine) AwardPoints(ctx context.Context, category domain.PointCategory, base int64, pc PointContext) (int64, error) {
	e.begin()
	final := e.ledger.AwardPoints(category, base, pc)
	return final, e.commit(ctx)
}

// AddExperience adds experience without crediting points.
func (e *Engine) AddExperience(ctx context.Context, amount int64) ([]LevelChange, error) {
	e.begin()
	changes := e.ledger.AddExperience(amount)
	return changes, e.commit(ctx)
}

// UpdateStreak records activity on at's calendar day.
func (e *Engine) UpdateStreak(ctx context.Context, at time.Time) error {
	e.begin()
	e.ledger.UpdateStreak(at)
	return e.commit(ctx)
}

// ─── Achievement Operations ─────────────────────────────────────────────────

// Unlock unlocks id once. See Registry.Unlock.
func (e *Engine) Unlock(ctx context.Context, id, description string, reward int64) (bool, error) {
	e.begin()
	ok := e.registry.Unlock(id, description, reward)
	return ok, e.commit(ctx)
}

// EvaluateAchievements runs the threshold families to a fixed point and
// returns every id unlocked.
func (e *Engine) EvaluateAchievements(ctx context.Context) ([]string, error) {
	out := e.begin()
	e.settle()
	return out.Unlocked, e.commit(ctx)
}

// ─── Challenge Operations ───────────────────────────────────────────────────

// ActivateChallenge instantiates a challenge template. A nil instance with
// a nil error means the activation was rejected.
func (e *Engine) ActivateChallenge(ctx context.Context, templateID string, o *domain.ChallengeOverrides) (*domain.ChallengeInstance, error) {
	e.begin()
	inst := e.challenges.Activate(templateID, o)
	return inst, e.commit(ctx)
}

// RecordChallengeProgress offers ev to one challenge instance.
func (e *Engine) RecordChallengeProgress(ctx context.Context, instanceID string, ev domain.ActivityEvent) (bool, error) {
	e.begin()
	ok := e.challenges.RecordProgress(instanceID, ev)
	return ok, e.commit(ctx)
}

// AbandonChallenge fails an active challenge with reason abandoned.
func (e *Engine) AbandonChallenge(ctx context.Context, instanceID string) (bool, error) {
	e.begin()
	ok := e.challenges.Abandon(instanceID)
	return ok, e.commit(ctx)
}

// ExpireOverdue expires overdue challenges and routes.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	e.begin()
	n := e.challenges.ExpireOverdue() + e.routes.ExpireOverdue()
	return n, e.commit(ctx)
}

// ─── Route Operations ───────────────────────────────────────────────────────

// StartRoute instantiates a route template. A nil instance with a nil
// error means the start was rejected.
func (e *Engine) StartRoute(ctx context.Context, templateID string) (*domain.RouteInstance, error) {
	e.begin()
	inst := e.routes.Start(templateID)
	return inst, e.commit(ctx)
}

// RecordWaypointActivity records an activity against a route's current
// waypoint.
func (e *Engine) RecordWaypointActivity(ctx context.Context, instanceID string, kind domain.EventKind, payload domain.EventContext) (bool, error) {
	e.begin()
	ok := e.routes.RecordWaypointActivity(instanceID, kind, payload)
	return ok, e.commit(ctx)
}

// RecordDiscovery attaches a side discovery to an active route.
func (e *Engine) RecordDiscovery(ctx context.Context, instanceID string, d domain.Discovery) (bool, error) {
	e.begin()
	ok := e.routes.RecordDiscovery(instanceID, d)
	return ok, e.commit(ctx)
}

// AbandonRoute fails an active route with reason abandoned.
func (e *Engine) AbandonRoute(ctx context.Context, instanceID string) (bool, error) {
	e.begin()
	ok := e.routes.Abandon(instanceID)
	return ok, e.commit(ctx)
}

// ─── Collection Operations ──────────────────────────────────────────────────

// AddToCollection records one acquisition of (collectionType, itemID).
func (e *Engine) AddToCollection(ctx context.Context, collectionType, itemID string, q domain.Quality, rare bool) (domain.CollectionEntry, bool, error) {
	e.begin()
	entry, ok := e.collection.Add(collectionType, itemID, q, rare)
	return entry, ok, e.commit(ctx)
}

// ─── Export / Import ────────────────────────────────────────────────────────

// Export serializes the full snapshot for backup.
func (e *Engine) Export() ([]byte, error) {
	snap := e.s.state.Clone()
	snap.Version = domain.SnapshotVersion
	snap.UserID = e.userID
	snap.SavedAt = e.s.now()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return data, nil
}

// Import replaces the engine state with an exported snapshot, rebound to
// this engine's user, and saves it. On any failure the prior state is kept
// and observers hear nothing of the unlocks settling the import produced.
func (e *Engine) Import(ctx context.Context, data []byte) error {
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	snap.UserID = e.userID

	prev, prevDirty, prevGood := e.s.state, e.s.dirty, e.good
	e.begin()
	e.s.state = snap
	e.s.touch()
	saved := false
	e.s.obs.hold()
	defer func() { e.s.obs.release(saved) }()
	if err := e.commit(ctx); err != nil {
		e.s.state, e.s.dirty, e.good = prev, prevDirty, prevGood
		return fmt.Errorf("import snapshot: %w", err)
	}
	saved = true
	return nil
}
