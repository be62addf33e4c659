package calendar

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/autocal/internal/conflict"
	"github.com/roach88/autocal/internal/event"
	"github.com/roach88/autocal/internal/store"
)

// Calendar routes typed operations for one session to the event store and
// the conflict detector.
//
// Thread-safety model:
//   - every operation takes the instance mutex, so within a session
//     operations run strictly one at a time in arrival order
//   - the mutex is held across the storage calls of an operation, so no
//     second operation for the same session interleaves with an in-flight
//     one, even though storage is an asynchronous dependency
//   - different sessions use different Calendar instances and never block
//     each other
type Calendar struct {
	mu       sync.Mutex
	session  string
	store    *store.Store
	detector *conflict.Detector
	ids      event.IDGenerator
	clock    Clock
	logger   *slog.Logger
}

// Session returns the opaque session key this calendar is scoped to.
func (c *Calendar) Session() string {
	return c.session
}

// AddEvent validates the draft, evaluates it against the stored schedule,
// and commits it unless conflicts were found without the force flag.
//
// The sequence per request:
//
//  1. Validate. Invalid input is terminal - nothing reaches storage.
//  2. Evaluate conflicts against a fresh listing.
//  3. Conflicts without force: return OutcomeConflictsDetected, store nothing.
//  4. Otherwise commit and return OutcomeCreated with the (possibly
//     force-overridden) conflict list attached for caller awareness.
func (c *Calendar) AddEvent(ctx context.Context, draft event.Draft, force bool) (*AddResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, err := event.New(draft, c.ids.Generate(), c.clock.Now())
	if err != nil {
		return nil, err
	}

	existing, err := c.store.ListEvents(ctx, c.session)
	if err != nil {
		return nil, err
	}
	conflicts := c.detector.Find(ev, existing)

	if len(conflicts) > 0 && !force {
		c.logger.Info("add rejected, schedule conflicts",
			"session", c.session, "event_id", ev.ID, "conflicts", len(conflicts))
		return &AddResult{
			Outcome:   OutcomeConflictsDetected,
			Event:     ev,
			Conflicts: conflicts,
		}, nil
	}

	if err := c.store.CreateEvent(ctx, c.session, ev); err != nil {
		return nil, err
	}

	c.logger.Info("event added",
		"session", c.session, "event_id", ev.ID, "forced", force && len(conflicts) > 0)
	return &AddResult{
		Outcome:   OutcomeCreated,
		Event:     ev,
		Conflicts: conflicts,
	}, nil
}

// ListEvents returns the session's events, ascending by datetime.
func (c *Calendar) ListEvents(ctx context.Context) ([]*event.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.ListEvents(ctx, c.session)
}

// GetEvent returns a single event by id, or store.ErrNotFound.
func (c *Calendar) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.GetEvent(ctx, c.session, id)
}

// CountEvents returns the session's maintained event count.
func (c *Calendar) CountEvents(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Count(ctx, c.session)
}

// DeleteEvent removes an event and returns the removed record, or
// store.ErrNotFound. The count never goes below zero.
func (c *Calendar) DeleteEvent(ctx context.Context, id string) (*event.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.store.DeleteEvent(ctx, c.session, id)
	if err != nil {
		return nil, err
	}
	c.logger.Info("event deleted", "session", c.session, "event_id", id)
	return removed, nil
}

// UpdateEvent merges the patch onto the stored event, preserving id and
// created, refreshing updated, and re-validating the merged record before
// the write. Fails with store.ErrNotFound or a validation error; in both
// cases the stored record is untouched.
func (c *Calendar) UpdateEvent(ctx context.Context, id string, patch event.Patch) (*event.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.store.GetEvent(ctx, c.session, id)
	if err != nil {
		return nil, err
	}

	merged, err := patch.Apply(existing, c.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := c.store.UpdateEvent(ctx, c.session, merged); err != nil {
		return nil, err
	}
	c.logger.Info("event updated", "session", c.session, "event_id", id)
	return merged, nil
}

// CheckConflicts evaluates a draft against the stored schedule without
// mutating anything. The draft is validated first, so a malformed candidate
// fails the same way an add would.
func (c *Calendar) CheckConflicts(ctx context.Context, draft event.Draft) ([]conflict.Conflict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate, err := event.Candidate(draft)
	if err != nil {
		return nil, err
	}

	existing, err := c.store.ListEvents(ctx, c.session)
	if err != nil {
		return nil, err
	}
	return c.detector.Find(candidate, existing), nil
}

// AuditConflicts runs a pairwise scan over the whole stored schedule and
// returns every conflicting pair.
func (c *Calendar) AuditConflicts(ctx context.Context) ([]conflict.Conflict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.store.ListEvents(ctx, c.session)
	if err != nil {
		return nil, err
	}
	return c.detector.FindAll(events), nil
}
