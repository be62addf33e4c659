package calendar

import (
	"github.com/roach88/autocal/internal/conflict"
	"github.com/roach88/autocal/internal/event"
)

// Outcome tags the result of an add request.
type Outcome string

const (
	// OutcomeCreated means the event was validated and committed. The
	// conflict list may still be non-empty when the caller forced the add.
	OutcomeCreated Outcome = "created"

	// OutcomeConflictsDetected means the event was valid but collided with
	// the existing schedule and the caller did not set the force flag.
	// Nothing was stored; the caller decides whether to force or abandon.
	OutcomeConflictsDetected Outcome = "conflicts_detected"
)

// AddResult is the terminal outcome of an add request.
//
// Event is the stored record for OutcomeCreated, or the would-be record
// (with server-assigned fields filled in) for OutcomeConflictsDetected.
// Conflicts carries full detail so the caller can present alternatives
// without a second round-trip.
type AddResult struct {
	Outcome   Outcome             `json:"outcome"`
	Event     *event.Event        `json:"event"`
	Conflicts []conflict.Conflict `json:"conflicts"`
}

// Created reports whether the event was committed.
func (r *AddResult) Created() bool {
	return r.Outcome == OutcomeCreated
}
