package progression

import (
	"context"
	"fmt"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/platform/validate"
)

// BasePoints is the base award per event kind before multipliers.
var BasePoints = map[domain.EventKind]int64{
	domain.EventSighting:       10,
	domain.EventPhoto:          15,
	domain.EventIdentification: 20,
	domain.EventExploration:    25,
	domain.EventCollaboration:  30,
	domain.EventDailyCheckIn:   5,
}

// ValidateEvent checks an inbound activity event.
func ValidateEvent(ev domain.ActivityEvent) error {
	if err := validate.Struct(ev); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
	}
	return nil
}

// HandleEvent runs one activity event through every component: streak,
// statistics, points, collection, active challenges and active routes.
// An invalid event is rejected with Accepted=false and changes nothing.
func (e *Engine) HandleEvent(ctx context.Context, ev domain.ActivityEvent) (Outcome, error) {
	out := e.begin()
	if err := ValidateEvent(ev); err != nil {
		e.s.reject("activity event", err.Error(), "kind", ev.Kind)
		return Outcome{Accepted: false, Reason: err.Error()}, nil
	}

	e.ledger.UpdateStreak(ev.At)
	e.s.state.Statistics.Events[ev.Kind]++
	e.s.touch()

	base := ev.Points
	if base <= 0 {
		base = BasePoints[ev.Kind]
	}
	out.Points = e.ledger.AwardPoints(ev.Kind.PointCategory(), base, PointContext{
		At:             ev.At,
		SpecialWeather: ev.Context.SpecialWeather,
		FirstTime:      ev.Context.FirstTime,
		Quality:        ev.Context.Quality,
	})
	e.collect(ev)

	e.challenges.ExpireOverdue()
	for _, id := range e.challenges.activeIDs() {
		e.challenges.RecordProgress(id, ev)
	}
	e.routes.ExpireOverdue()
	for _, id := range e.routes.activeIDs() {
		e.routes.RecordWaypointActivity(id, ev.Kind, ev.Context)
	}

	if err := e.commit(ctx); err != nil {
		return *out, err
	}
	return *out, nil
}

// collect adds the collection entries an event implies.
func (e *Engine) collect(ev domain.ActivityEvent) {
	c := ev.Context
	switch ev.Kind {
	case domain.EventSighting, domain.EventIdentification:
		if c.Subject != "" {
			e.collection.Add(domain.CollectionSpecies, c.Subject, c.Quality, false)
		}
	case domain.EventPhoto:
		if c.Subject != "" {
			e.collection.Add(domain.CollectionPhotos, c.Subject, c.Quality, false)
		}
	case domain.EventExploration:
		if c.Zone != "" {
			e.collection.Add(domain.CollectionZones, c.Zone, "", false)
		}
	}
}
