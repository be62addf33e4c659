package calendar

import "time"

// Clock supplies the current instant for created/updated stamps.
// Implemented by SystemClock (production) and testutil.Clock (tests).
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock, truncated to UTC seconds so stamps
// round-trip exactly through their RFC 3339 wire form.
type SystemClock struct{}

// Now returns the current UTC instant.
func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
