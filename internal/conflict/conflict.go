package conflict

import (
	"fmt"
	"time"

	"github.com/roach88/autocal/internal/event"
)

// DefaultBuffer is the gap suggested between a conflicting event's end and
// the rescheduled start.
const DefaultBuffer = 15 * time.Minute

// Conflict is a derived, non-persistent overlap between two events.
//
// Event is the candidate (or, for whole-schedule audits, the earlier of the
// pair); ConflictingEvent is the stored event it collides with. The overlap
// window is half-open: [OverlapStart, OverlapEnd).
type Conflict struct {
	Event            *event.Event `json:"event,omitempty"`
	ConflictingEvent *event.Event `json:"conflictingEvent"`
	OverlapStart     time.Time    `json:"overlapStart"`
	OverlapEnd       time.Time    `json:"overlapEnd"`
	Suggestions      []string     `json:"suggestions"`
}

// Detector computes conflicts over event sets.
// The zero value is not usable; construct with New.
type Detector struct {
	buffer time.Duration
}

// Option configures a Detector.
type Option func(*Detector)

// WithBuffer overrides the reschedule buffer used in suggestions.
func WithBuffer(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.buffer = d
		}
	}
}

// New creates a Detector with the default 15-minute reschedule buffer.
func New(opts ...Option) *Detector {
	d := &Detector{buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Find tests the candidate against every existing event and returns one
// Conflict per strict interval overlap, in the order of existing (which is
// datetime-ascending when the slice comes from the store).
//
// An existing event with the candidate's own ID is skipped, so re-checking
// an update against the schedule never reports a self-conflict. Overlap is
// strict on half-open intervals: back-to-back events do not conflict.
func (d *Detector) Find(candidate *event.Event, existing []*event.Event) []Conflict {
	conflicts := []Conflict{}
	for _, ev := range existing {
		if candidate.ID != "" && ev.ID == candidate.ID {
			continue
		}
		if !candidate.Overlaps(ev) {
			continue
		}
		conflicts = append(conflicts, d.describe(candidate, ev))
	}
	return conflicts
}

// FindAll runs a pairwise scan over a full event list for whole-schedule
// audits. Each unordered pair is checked exactly once, with the same overlap
// predicate as Find.
func (d *Detector) FindAll(events []*event.Event) []Conflict {
	conflicts := []Conflict{}
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if !events[i].Overlaps(events[j]) {
				continue
			}
			conflicts = append(conflicts, d.describe(events[i], events[j]))
		}
	}
	return conflicts
}

// Suggest generates remediation suggestions for a detected conflict.
//
// The first suggestion is always a concrete instant: the conflicting event's
// end plus the reschedule buffer. If both events fall on the same UTC
// calendar day, a second suggestion proposes the next day at the candidate's
// original time-of-day. Deterministic given its inputs.
func (d *Detector) Suggest(candidate, conflicting *event.Event) []string {
	after := conflicting.End().Add(d.buffer)
	suggestions := []string{
		fmt.Sprintf("Consider scheduling at %s instead", after.UTC().Format(time.RFC3339)),
	}

	if sameDay(candidate.Start(), conflicting.Start()) {
		nextDay := candidate.Start().UTC().AddDate(0, 0, 1)
		suggestions = append(suggestions,
			fmt.Sprintf("Consider moving to %s", nextDay.Format(time.RFC3339)))
	}
	return suggestions
}

func (d *Detector) describe(candidate, conflicting *event.Event) Conflict {
	return Conflict{
		Event:            candidate,
		ConflictingEvent: conflicting,
		OverlapStart:     laterOf(candidate.Start(), conflicting.Start()),
		OverlapEnd:       earlierOf(candidate.End(), conflicting.End()),
		Suggestions:      d.Suggest(candidate, conflicting),
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
