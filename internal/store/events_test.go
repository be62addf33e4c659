package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/autocal/internal/event"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testEvent(id, title, start string, duration int) *event.Event {
	dt, _ := time.Parse(time.RFC3339, start)
	now, _ := time.Parse(time.RFC3339, "2025-03-01T09:00:00Z")
	return &event.Event{
		ID:           id,
		Title:        title,
		Datetime:     dt,
		Duration:     duration,
		Priority:     event.PriorityMedium,
		Participants: []string{},
		Created:      now,
		Updated:      now,
	}
}

// requireCountMatchesList asserts the maintained count equals the true
// number of stored events.
func requireCountMatchesList(t *testing.T, s *Store, session string) {
	t.Helper()
	ctx := context.Background()
	count, err := s.Count(ctx, session)
	require.NoError(t, err)
	events, err := s.ListEvents(ctx, session)
	require.NoError(t, err)
	require.Equal(t, len(events), count, "count must equal len(list)")
}

func TestCreateAndGet_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ev := testEvent("e1", "Lunch", "2025-03-10T13:00:00Z", 60)
	loc := "cafe"
	ev.Location = &loc
	ev.Participants = []string{"ana"}

	require.NoError(t, s.CreateEvent(ctx, "s1", ev))

	got, err := s.GetEvent(ctx, "s1", "e1")
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, ev.Title, got.Title)
	assert.True(t, ev.Datetime.Equal(got.Datetime))
	assert.Equal(t, ev.Duration, got.Duration)
	assert.Equal(t, ev.Participants, got.Participants)
	require.NotNil(t, got.Location)
	assert.Equal(t, "cafe", *got.Location)
	assert.True(t, ev.Created.Equal(got.Created))
}

func TestCount_MaintainedAcrossMutations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	requireCountMatchesList(t, s, "s1")

	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("e1", "A", "2025-03-10T10:00:00Z", 60)))
	requireCountMatchesList(t, s, "s1")

	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("e2", "B", "2025-03-11T10:00:00Z", 60)))
	requireCountMatchesList(t, s, "s1")

	_, err := s.DeleteEvent(ctx, "s1", "e1")
	require.NoError(t, err)
	requireCountMatchesList(t, s, "s1")

	_, err = s.DeleteEvent(ctx, "s1", "e2")
	require.NoError(t, err)
	requireCountMatchesList(t, s, "s1")

	count, err := s.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteEvent_ReturnsRemovedRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("e1", "Lunch", "2025-03-10T13:00:00Z", 60)))

	removed, err := s.DeleteEvent(ctx, "s1", "e1")
	require.NoError(t, err)
	assert.Equal(t, "Lunch", removed.Title)

	_, err = s.GetEvent(ctx, "s1", "e1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEvent_MissingID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("e1", "A", "2025-03-10T10:00:00Z", 60)))

	_, err := s.DeleteEvent(ctx, "s1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	// A failed delete changes nothing.
	requireCountMatchesList(t, s, "s1")
	count, err := s.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpdateEvent_OverwritesInPlace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ev := testEvent("e1", "Lunch", "2025-03-10T13:00:00Z", 60)
	require.NoError(t, s.CreateEvent(ctx, "s1", ev))

	ev.Title = "Team lunch"
	ev.Updated = ev.Updated.Add(time.Hour)
	require.NoError(t, s.UpdateEvent(ctx, "s1", ev))

	got, err := s.GetEvent(ctx, "s1", "e1")
	require.NoError(t, err)
	assert.Equal(t, "Team lunch", got.Title)
	assert.True(t, got.Updated.After(got.Created))

	// Updates never change the count.
	requireCountMatchesList(t, s, "s1")
}

func TestUpdateEvent_MissingID(t *testing.T) {
	s := openTestStore(t)
	err := s.UpdateEvent(context.Background(), "s1", testEvent("nope", "X", "2025-03-10T13:00:00Z", 60))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEvents_SortedByDatetime(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Insert out of order.
	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("late", "Late", "2025-03-10T15:00:00Z", 60)))
	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("early", "Early", "2025-03-10T09:00:00Z", 60)))
	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("mid", "Mid", "2025-03-10T12:00:00Z", 60)))

	events, err := s.ListEvents(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"early", "mid", "late"},
		[]string{events[0].ID, events[1].ID, events[2].ID})
}

func TestListEvents_StableTieBreak(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Same datetime: insertion order decides, and repeated listings agree.
	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("first", "A", "2025-03-10T10:00:00Z", 30)))
	require.NoError(t, s.CreateEvent(ctx, "s1", testEvent("second", "B", "2025-03-10T10:00:00Z", 30)))

	a, err := s.ListEvents(ctx, "s1")
	require.NoError(t, err)
	b, err := s.ListEvents(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, "first", a[0].ID)
	assert.Equal(t, "second", a[1].ID)
	assert.Equal(t, a, b, "listing twice with no mutation must be identical")
}

func TestSessions_AreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEvent(ctx, "alice", testEvent("e1", "Alice's", "2025-03-10T10:00:00Z", 60)))
	require.NoError(t, s.CreateEvent(ctx, "bob", testEvent("e2", "Bob's", "2025-03-10T10:00:00Z", 60)))

	aliceEvents, err := s.ListEvents(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceEvents, 1)
	assert.Equal(t, "Alice's", aliceEvents[0].Title)

	// Bob cannot see or delete Alice's event.
	_, err = s.GetEvent(ctx, "bob", "e1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteEvent(ctx, "bob", "e1")
	assert.ErrorIs(t, err, ErrNotFound)

	requireCountMatchesList(t, s, "alice")
	requireCountMatchesList(t, s, "bob")
}

func TestCount_EmptySession(t *testing.T) {
	s := openTestStore(t)
	count, err := s.Count(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
