package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/roach88/autocal/internal/calendar"
)

// sessionHeader carries the opaque session key. Requests without it get a
// generated key, echoed back so the client can pin its session.
const sessionHeader = "X-Session-ID"

// Server provides the HTTP API over a calendar registry.
type Server struct {
	registry *calendar.Registry
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer constructs a Server and registers its routes.
func NewServer(registry *calendar.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		registry: registry,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler, with CORS applied to every route.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/events", s.handleAddEvent)
	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("POST /api/events/conflicts", s.handleCheckConflicts)
}

// withCORS adds permissive CORS headers and answers preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+sessionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// session resolves the request's session key, generating one when the
// header is absent, and echoes it on the response.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *calendar.Calendar {
	key := r.Header.Get(sessionHeader)
	if key == "" {
		key = "session_" + uuid.Must(uuid.NewV7()).String()
	}
	w.Header().Set(sessionHeader, key)
	return s.registry.Calendar(key)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": "1.0.0",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding a response value assembled from our own types cannot fail in
	// a way we can report to the client at this point.
	_ = json.NewEncoder(w).Encode(v)
}
