// Package calendar is the per-session entry point mediating validation,
// conflict policy, and storage.
//
// A Registry hands out one Calendar per session key, created lazily on first
// access and kept for the life of the process. Each Calendar serializes its
// operations: requests are observed and committed in arrival order, which
// makes the conflict-check-then-commit sequence race-free without any
// locking in the store. Sessions share no mutable state with each other, so
// operations for different keys proceed fully in parallel.
//
// Outcomes are typed. Adding an event yields a tagged AddResult (created or
// conflicts detected); failures are distinct error types - a validation
// error from internal/event, store.ErrNotFound, or a *store.StorageError -
// so callers branch with errors.Is/As instead of string matching.
package calendar
