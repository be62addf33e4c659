package calendar

import (
	"log/slog"
	"sync"

	"github.com/roach88/autocal/internal/conflict"
	"github.com/roach88/autocal/internal/event"
	"github.com/roach88/autocal/internal/store"
)

// Registry maps opaque session keys to Calendar instances.
//
// Exactly one Calendar exists per session key at any time: the first access
// creates it, later accesses return the same instance, and instances are
// kept for the life of the process. There is no expiry - a session's store
// lives indefinitely. This replaces ad hoc global maps with an explicit
// factory whose lifecycle and isolation are part of the contract.
type Registry struct {
	mu        sync.Mutex
	store     *store.Store
	detector  *conflict.Detector
	ids       event.IDGenerator
	clock     Clock
	logger    *slog.Logger
	calendars map[string]*Calendar
}

// Option allows configuration of registry parameters.
type Option func(*Registry)

// WithDetector replaces the default conflict detector.
func WithDetector(d *conflict.Detector) Option {
	return func(r *Registry) { r.detector = d }
}

// WithIDGenerator replaces the default UUIDv7 ID generator.
// Tests use event.NewFixedGenerator for deterministic IDs.
func WithIDGenerator(g event.IDGenerator) Option {
	return func(r *Registry) { r.ids = g }
}

// WithClock replaces the system clock.
// Tests use a deterministic clock from internal/testutil.
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a Registry backed by the given store.
func NewRegistry(st *store.Store, opts ...Option) *Registry {
	r := &Registry{
		store:     st,
		detector:  conflict.New(),
		ids:       event.UUIDv7Generator{},
		clock:     SystemClock{},
		logger:    slog.Default(),
		calendars: make(map[string]*Calendar),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Calendar returns the calendar for the session key, creating it lazily on
// first access. Safe for concurrent use.
func (r *Registry) Calendar(session string) *Calendar {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.calendars[session]; ok {
		return c
	}
	c := &Calendar{
		session:  session,
		store:    r.store,
		detector: r.detector,
		ids:      r.ids,
		clock:    r.clock,
		logger:   r.logger,
	}
	r.calendars[session] = c
	return c
}
