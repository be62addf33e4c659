package event

import "time"

// Priority ranks how important an event is to its owner.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities defines the allowed priority values.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// Limits applied during validation. A duration of more than one day is
// rejected rather than silently clamped.
const (
	MaxTitleLength  = 200
	MaxDuration     = 1440 // minutes
	DefaultDuration = 60   // minutes
)

// Event is the durable unit of the calendar.
//
// Datetime plus Duration define the half-open interval [Start, End) used for
// all overlap math. Created and Updated are set by the store layer, never by
// callers; Created is immutable after the first write.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Datetime     time.Time `json:"datetime"`
	Duration     int       `json:"duration"` // minutes
	Priority     Priority  `json:"priority"`
	Participants []string  `json:"participants"`
	Location     *string   `json:"location"`
	Description  *string   `json:"description"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// Start returns the beginning of the event's interval.
func (e *Event) Start() time.Time {
	return e.Datetime
}

// End returns the exclusive end of the event's interval.
// A missing or non-positive duration counts as DefaultDuration, so interval
// math is safe even on a raw candidate that never went through defaults.
func (e *Event) End() time.Time {
	d := e.Duration
	if d <= 0 {
		d = DefaultDuration
	}
	return e.Datetime.Add(time.Duration(d) * time.Minute)
}

// Overlaps reports whether the two events' half-open intervals intersect.
// Back-to-back events (one's end equals the other's start) do not overlap.
func (e *Event) Overlaps(other *Event) bool {
	return e.Start().Before(other.End()) && other.Start().Before(e.End())
}

// Clone returns a deep copy of the event. Stores hand out clones so callers
// can never mutate persisted state through a shared pointer.
func (e *Event) Clone() *Event {
	c := *e
	if e.Participants != nil {
		c.Participants = append([]string(nil), e.Participants...)
	}
	if e.Location != nil {
		loc := *e.Location
		c.Location = &loc
	}
	if e.Description != nil {
		desc := *e.Description
		c.Description = &desc
	}
	return &c
}
