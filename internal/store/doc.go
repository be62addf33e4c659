// Package store provides durable, session-scoped storage for calendar
// events.
//
// The layout is a key-value model over SQLite: one logical record per event
// at key "event:<id>" inside a session's namespace, plus one scalar record
// "eventCount" maintained transactionally with every add and delete. Any
// key-value store preserving "list all events for a session" and
// "get/put/delete by id" could back the same interface; SQLite with WAL
// mode is the reference choice.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The store never retries a failed operation. Every mutation is a single
// transaction, so a failure is atomic: either the event and its count
// adjustment are both visible, or neither is.
package store
