package daemon

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/wildtrail/wildtrail/internal/app/inbox"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/infra/metrics"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// Journal records processed activity events.
type Journal interface {
	AppendActivity(r domain.ActivityRecord) (int64, error)
}

// Sessions keeps one open engine per user and serializes access to it.
// Engines are not safe for concurrent use; every call goes through the
// user's mutex.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*userSession

	store   progression.Store
	opts    []progression.Option
	inbox   *inbox.Service
	journal Journal
	now     func() time.Time
	log     *logger.Logger
}

type userSession struct {
	mu     sync.Mutex
	engine *progression.Engine
}

// NewSessions creates a session manager. opts are applied to every engine
// it opens.
func NewSessions(store progression.Store, log *logger.Logger, opts ...progression.Option) *Sessions {
	if log == nil {
		log = logger.Nop()
	}
	return &Sessions{
		sessions: make(map[string]*userSession),
		store:    store,
		opts:     opts,
		now:      time.Now,
		log:      log,
	}
}

// SetInbox subscribes inbox notifications to every session opened later.
func (s *Sessions) SetInbox(svc *inbox.Service) { s.inbox = svc }

// SetJournal records every handled event in j.
func (s *Sessions) SetJournal(j Journal) { s.journal = j }

// Do runs fn against userID's engine while holding the user's lock. op
// labels the latency metric.
func (s *Sessions) Do(ctx context.Context, userID, op string, fn func(e *progression.Engine) error) error {
	us, err := s.session(ctx, userID)
	if err != nil {
		return err
	}

	us.mu.Lock()
	defer us.mu.Unlock()

	start := time.Now()
	err = fn(us.engine)
	metrics.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if errors.Is(err, domain.ErrStoreUnavailable) {
		metrics.StoreErrors.WithLabelValues("save").Inc()
	}
	return err
}

// HandleEvent feeds one activity event to userID's engine and journals it.
func (s *Sessions) HandleEvent(ctx context.Context, userID string, ev domain.ActivityEvent) (progression.Outcome, error) {
	var out progression.Outcome
	err := s.Do(ctx, userID, "event", func(e *progression.Engine) error {
		var err error
		out, err = e.HandleEvent(ctx, ev)
		return err
	})
	if err != nil && !out.Accepted {
		return out, err
	}

	kind := string(ev.Kind)
	if !ev.Kind.Valid() {
		kind = "invalid"
	}
	metrics.EventsProcessed.WithLabelValues(kind, strconv.FormatBool(out.Accepted)).Inc()

	if s.journal != nil {
		at := ev.At
		if at.IsZero() {
			at = s.now()
		}
		rec := domain.ActivityRecord{
			UserID:   userID,
			Kind:     ev.Kind,
			At:       at,
			Accepted: out.Accepted,
			Points:   out.Points,
			Reason:   out.Reason,
		}
		if _, jerr := s.journal.AppendActivity(rec); jerr != nil {
			s.log.Warn("journal activity failed", "user_id", userID, "error", jerr)
		}
	}
	return out, err
}

// Open returns the users with an open session, alphabetically.
func (s *Sessions) Open() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.sessions))
	for u := range s.sessions {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// ExpireAll expires overdue challenges and routes in every open session.
func (s *Sessions) ExpireAll(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, userID := range s.Open() {
		err := s.Do(ctx, userID, "sweep", func(e *progression.Engine) error {
			n, err := e.ExpireOverdue(ctx)
			total += n
			return err
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	metrics.SweepExpired.Add(float64(total))
	return total, errors.Join(errs...)
}

// RunSweeper calls ExpireAll every interval until ctx is done. A zero
// interval disables the sweeper.
func (s *Sessions) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.ExpireAll(ctx)
			if err != nil {
				s.log.Warn("expiry sweep failed", "error", err)
			}
			if n > 0 {
				s.log.Info("expired overdue instances", "count", n)
			}
		}
	}
}

func (s *Sessions) session(ctx context.Context, userID string) (*userSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if us, ok := s.sessions[userID]; ok {
		return us, nil
	}

	e, err := progression.Open(ctx, userID, s.store, s.opts...)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			metrics.StoreErrors.WithLabelValues("load").Inc()
		}
		return nil, err
	}
	e.Subscribe(metrics.Observer{})
	if s.inbox != nil {
		e.Subscribe(s.inbox.Observer(userID))
	}

	us := &userSession{engine: e}
	s.sessions[userID] = us
	metrics.SessionsOpen.Inc()
	s.log.Debug("opened session", "user_id", userID)
	return us, nil
}
