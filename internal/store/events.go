package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/autocal/internal/event"
)

// countKey is the scalar record holding a session's running event count.
const countKey = "eventCount"

// eventKey returns the storage key for an event id.
func eventKey(id string) string {
	return "event:" + id
}

// CreateEvent persists a new event and increments the session's count in a
// single transaction. The caller is responsible for having validated the
// event; the store assumes it is well-formed.
func (s *Store) CreateEvent(ctx context.Context, session string, ev *event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return storageErr("create event: marshal", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("create event: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv (session_key, key, value)
		VALUES (?, ?, ?)
	`, session, eventKey(ev.ID), string(payload)); err != nil {
		return storageErr("create event: insert", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv (session_key, key, value)
		VALUES (?, ?, '1')
		ON CONFLICT(session_key, key)
		DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)
	`, session, countKey); err != nil {
		return storageErr("create event: bump count", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("create event: commit", err)
	}
	return nil
}

// GetEvent returns the event with the given id, or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, session, id string) (*event.Event, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE session_key = ? AND key = ?
	`, session, eventKey(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get event", err)
	}
	return decodeEvent(payload)
}

// UpdateEvent overwrites an existing event record with a single put, which
// SQLite makes atomic to readers. Returns ErrNotFound if the id is absent.
// The count is unchanged - updates never add or remove records.
func (s *Store) UpdateEvent(ctx context.Context, session string, ev *event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return storageErr("update event: marshal", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE kv SET value = ? WHERE session_key = ? AND key = ?
	`, string(payload), session, eventKey(ev.ID))
	if err != nil {
		return storageErr("update event", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("update event: rows affected", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes the event and decrements the session's count (floored
// at zero) in a single transaction. Returns the removed record so callers
// can build confirmation messages, or ErrNotFound.
func (s *Store) DeleteEvent(ctx context.Context, session, id string) (*event.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("delete event: begin tx", err)
	}
	defer tx.Rollback()

	var payload string
	err = tx.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE session_key = ? AND key = ?
	`, session, eventKey(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("delete event: select", err)
	}

	removed, err := decodeEvent(payload)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM kv WHERE session_key = ? AND key = ?
	`, session, eventKey(id)); err != nil {
		return nil, storageErr("delete event", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE kv
		SET value = CAST(MAX(CAST(value AS INTEGER) - 1, 0) AS TEXT)
		WHERE session_key = ? AND key = ?
	`, session, countKey); err != nil {
		return nil, storageErr("delete event: drop count", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("delete event: commit", err)
	}
	return removed, nil
}

// ListEvents returns all events for the session, ascending by datetime.
// Ties are broken by insertion order (rowid), which keeps repeated listings
// of an unchanged schedule identical. The slice is produced fresh on every
// call - the store never caches listings.
func (s *Store) ListEvents(ctx context.Context, session string) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value FROM kv
		WHERE session_key = ? AND key LIKE 'event:%'
		ORDER BY rowid ASC
	`, session)
	if err != nil {
		return nil, storageErr("list events", err)
	}
	defer rows.Close()

	events := []*event.Event{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, storageErr("list events: scan", err)
		}
		ev, err := decodeEvent(payload)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list events: iterate", err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Datetime.Before(events[j].Datetime)
	})
	return events, nil
}

// Count returns the session's maintained event count. The count is stored
// incrementally rather than derived by scanning, so status queries stay O(1);
// it always equals len(ListEvents(...)) because both are adjusted in the
// same transaction.
func (s *Store) Count(ctx context.Context, session string) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE session_key = ? AND key = ?
	`, session, countKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr("count events", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, storageErr("count events: parse", err)
	}
	return n, nil
}

func decodeEvent(payload string) (*event.Event, error) {
	var ev event.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, storageErr("decode event", err)
	}
	return &ev, nil
}
