package event

import (
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Draft is caller-supplied, not-yet-validated event data.
//
// Datetime is carried as the raw wire string so a bad timestamp surfaces as
// a *ValidationError instead of a JSON decoding failure. Pointer fields
// distinguish "absent" (take the documented default) from an explicit value.
type Draft struct {
	Title        string   `json:"title"`
	Datetime     string   `json:"datetime"`
	Duration     *int     `json:"duration,omitempty"`
	Priority     *string  `json:"priority,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Description  *string  `json:"description,omitempty"`
}

// Validate checks the draft against the creation rules:
//
//   - title: required, 1-200 characters after NFC normalization
//   - datetime: required, must parse to a valid instant
//   - duration: if present, 0 < duration <= 1440
//   - priority: if present, one of low|medium|high
//
// Returns a *ValidationError on the first violation, nil otherwise.
func (d *Draft) Validate() error {
	if err := validateTitle(d.Title); err != nil {
		return err
	}
	if _, err := parseInstant(d.Datetime); err != nil {
		return err
	}
	if d.Duration != nil {
		if err := validateDuration(*d.Duration); err != nil {
			return err
		}
	}
	if d.Priority != nil {
		if err := validatePriority(*d.Priority); err != nil {
			return err
		}
	}
	return nil
}

// New validates the draft and materializes it into an Event.
//
// The caller supplies the ID and the current instant; New itself never reads
// a clock or generates randomness. Absent optional fields take their
// documented defaults: duration 60, priority medium, empty participants,
// nil location and description. Created and Updated are both stamped to now.
func New(d Draft, id string, now time.Time) (*Event, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	start, _ := parseInstant(d.Datetime)

	ev := &Event{
		ID:           id,
		Title:        norm.NFC.String(d.Title),
		Datetime:     start,
		Duration:     DefaultDuration,
		Priority:     PriorityMedium,
		Participants: []string{},
		Created:      now,
		Updated:      now,
	}
	if d.Duration != nil {
		ev.Duration = *d.Duration
	}
	if d.Priority != nil {
		ev.Priority = Priority(*d.Priority)
	}
	if d.Participants != nil {
		ev.Participants = append([]string(nil), d.Participants...)
	}
	if d.Location != nil {
		loc := *d.Location
		ev.Location = &loc
	}
	if d.Description != nil {
		desc := *d.Description
		ev.Description = &desc
	}
	return ev, nil
}

// Candidate materializes the draft for conflict evaluation only.
// Same defaulting as New but without server-assigned fields.
func Candidate(d Draft) (*Event, error) {
	return New(d, "", time.Time{})
}

// Patch is a partial update merged onto an existing event.
//
// nil fields are left untouched. Setting Location or Description to a new
// value is supported; clearing them back to null is not expressible through
// a patch (matching the merge semantics of the reference implementation,
// where an omitted key keeps the stored value).
type Patch struct {
	Title        *string  `json:"title,omitempty"`
	Datetime     *string  `json:"datetime,omitempty"`
	Duration     *int     `json:"duration,omitempty"`
	Priority     *string  `json:"priority,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Description  *string  `json:"description,omitempty"`
}

// Apply merges the patch onto a clone of ev and re-validates the result.
//
// ID and Created are forcibly preserved; Updated is refreshed to now. The
// merged record is validated before it is returned, so an invalid patch
// never produces a writable event. Returns a *ValidationError on violation.
func (p *Patch) Apply(ev *Event, now time.Time) (*Event, error) {
	merged := ev.Clone()

	if p.Title != nil {
		title := norm.NFC.String(*p.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		merged.Title = title
	}
	if p.Datetime != nil {
		start, err := parseInstant(*p.Datetime)
		if err != nil {
			return nil, err
		}
		merged.Datetime = start
	}
	if p.Duration != nil {
		if err := validateDuration(*p.Duration); err != nil {
			return nil, err
		}
		merged.Duration = *p.Duration
	}
	if p.Priority != nil {
		if err := validatePriority(*p.Priority); err != nil {
			return nil, err
		}
		merged.Priority = Priority(*p.Priority)
	}
	if p.Participants != nil {
		merged.Participants = append([]string(nil), p.Participants...)
	}
	if p.Location != nil {
		loc := *p.Location
		merged.Location = &loc
	}
	if p.Description != nil {
		desc := *p.Description
		merged.Description = &desc
	}

	merged.ID = ev.ID
	merged.Created = ev.Created
	merged.Updated = now
	return merged, nil
}

func validateTitle(title string) error {
	title = norm.NFC.String(title)
	if title == "" {
		return newValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return newValidationError("title", "title too long (max %d characters)", MaxTitleLength)
	}
	return nil
}

func validateDuration(d int) error {
	if d <= 0 || d > MaxDuration {
		return newValidationError("duration", "duration must be a positive number of minutes <= %d", MaxDuration)
	}
	return nil
}

func validatePriority(p string) error {
	if !ValidPriorities[Priority(p)] {
		return newValidationError("priority", "priority must be one of low, medium, high")
	}
	return nil
}

func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, newValidationError("datetime", "datetime is required")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, newValidationError("datetime", "invalid datetime format (want RFC 3339, e.g. 2025-03-10T13:00:00Z)")
	}
	return t, nil
}
