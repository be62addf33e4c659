package event

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int          { return &n }
func strPtr(s string) *string    { return &s }
func instant(s string) time.Time { t, _ := time.Parse(time.RFC3339, s); return t }

func TestDraft_Validate(t *testing.T) {
	valid := Draft{Title: "Lunch", Datetime: "2025-03-10T13:00:00Z"}

	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr string // substring of the field name, "" for valid
	}{
		{"valid minimal draft", func(d *Draft) {}, ""},
		{"missing title", func(d *Draft) { d.Title = "" }, "title"},
		{"title too long", func(d *Draft) { d.Title = strings.Repeat("x", 201) }, "title"},
		{"title at limit", func(d *Draft) { d.Title = strings.Repeat("x", 200) }, ""},
		{"missing datetime", func(d *Draft) { d.Datetime = "" }, "datetime"},
		{"garbage datetime", func(d *Draft) { d.Datetime = "next tuesday" }, "datetime"},
		{"zero duration", func(d *Draft) { d.Duration = intPtr(0) }, "duration"},
		{"negative duration", func(d *Draft) { d.Duration = intPtr(-30) }, "duration"},
		{"duration over one day", func(d *Draft) { d.Duration = intPtr(2000) }, "duration"},
		{"duration at limit", func(d *Draft) { d.Duration = intPtr(1440) }, ""},
		{"unknown priority", func(d *Draft) { d.Priority = strPtr("urgent") }, "priority"},
		{"known priority", func(d *Draft) { d.Priority = strPtr("high") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err), "want ValidationError, got %T", err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr, ve.Field)
		})
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	now := instant("2025-03-01T09:00:00Z")

	ev, err := New(Draft{Title: "Standup", Datetime: "2025-03-10T13:00:00Z"}, "ev-1", now)
	require.NoError(t, err)

	assert.Equal(t, "ev-1", ev.ID)
	assert.Equal(t, "Standup", ev.Title)
	assert.Equal(t, instant("2025-03-10T13:00:00Z"), ev.Datetime)
	assert.Equal(t, DefaultDuration, ev.Duration)
	assert.Equal(t, PriorityMedium, ev.Priority)
	assert.NotNil(t, ev.Participants)
	assert.Empty(t, ev.Participants)
	assert.Nil(t, ev.Location)
	assert.Nil(t, ev.Description)
	assert.Equal(t, now, ev.Created)
	assert.Equal(t, now, ev.Updated)
}

func TestNew_KeepsExplicitValues(t *testing.T) {
	now := instant("2025-03-01T09:00:00Z")

	ev, err := New(Draft{
		Title:        "Review",
		Datetime:     "2025-03-10T13:00:00Z",
		Duration:     intPtr(30),
		Priority:     strPtr("high"),
		Participants: []string{"ana", "bo"},
		Location:     strPtr("room 4"),
	}, "ev-2", now)
	require.NoError(t, err)

	assert.Equal(t, 30, ev.Duration)
	assert.Equal(t, PriorityHigh, ev.Priority)
	assert.Equal(t, []string{"ana", "bo"}, ev.Participants)
	require.NotNil(t, ev.Location)
	assert.Equal(t, "room 4", *ev.Location)
}

func TestNew_NormalizesTitleToNFC(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9.
	decomposed := "Cafe\u0301"

	ev, err := New(Draft{Title: decomposed, Datetime: "2025-03-10T13:00:00Z"}, "ev-3", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", ev.Title)
}

func TestPatch_Apply(t *testing.T) {
	created := instant("2025-03-01T09:00:00Z")
	base, err := New(Draft{Title: "Lunch", Datetime: "2025-03-10T13:00:00Z"}, "ev-1", created)
	require.NoError(t, err)

	later := created.Add(2 * time.Hour)
	patch := Patch{Title: strPtr("Team lunch"), Duration: intPtr(90)}

	merged, err := patch.Apply(base, later)
	require.NoError(t, err)

	// Changed fields
	assert.Equal(t, "Team lunch", merged.Title)
	assert.Equal(t, 90, merged.Duration)

	// Forcibly preserved fields
	assert.Equal(t, "ev-1", merged.ID)
	assert.Equal(t, created, merged.Created)
	assert.Equal(t, later, merged.Updated)
	assert.True(t, !merged.Updated.Before(merged.Created), "updated must be >= created")

	// Untouched fields
	assert.Equal(t, base.Datetime, merged.Datetime)
	assert.Equal(t, base.Priority, merged.Priority)

	// Original is not mutated
	assert.Equal(t, "Lunch", base.Title)
	assert.Equal(t, DefaultDuration, base.Duration)
}

func TestPatch_Apply_RejectsInvalidMerge(t *testing.T) {
	base, err := New(Draft{Title: "Lunch", Datetime: "2025-03-10T13:00:00Z"}, "ev-1", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name  string
		patch Patch
	}{
		{"empty title", Patch{Title: strPtr("")}},
		{"bad datetime", Patch{Datetime: strPtr("not-a-time")}},
		{"oversized duration", Patch{Duration: intPtr(2000)}},
		{"bad priority", Patch{Priority: strPtr("asap")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.patch.Apply(base, time.Now())
			assert.True(t, IsValidation(err), "want ValidationError, got %v", err)
		})
	}
}

func TestEvent_Interval(t *testing.T) {
	ev := &Event{Datetime: instant("2025-03-10T13:00:00Z"), Duration: 30}
	assert.Equal(t, instant("2025-03-10T13:00:00Z"), ev.Start())
	assert.Equal(t, instant("2025-03-10T13:30:00Z"), ev.End())

	// A raw candidate with no duration still gets interval math.
	raw := &Event{Datetime: instant("2025-03-10T13:00:00Z")}
	assert.Equal(t, instant("2025-03-10T14:00:00Z"), raw.End())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
