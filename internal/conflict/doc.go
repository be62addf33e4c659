// Package conflict detects temporal overlaps between calendar events and
// generates remediation suggestions.
//
// The detector is pure: it reads a snapshot of events and returns derived
// data. It never touches storage, never reads a clock, and never mutates
// its inputs, so identical inputs always produce identical output.
package conflict
