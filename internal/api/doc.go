// Package api exposes the calendar over HTTP.
//
// The handler resolves an opaque session key from the X-Session-ID request
// header (generating one when absent and echoing it back), obtains the
// session's calendar from the registry, and translates typed results into
// the wire contract:
//
//	success          -> {"success":true,  "event":..., "conflicts":[...]}
//	soft conflict    -> {"success":false, "hasConflicts":true, "conflicts":[...], "event":...}   (409)
//	validation error -> {"success":false, "error":"<message>"}                                   (400)
//
// Command interpretation (natural-language parsing) is not part of this
// surface: callers are expected to submit a structured draft already
// extracted from free text.
package api
