package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roach88/autocal/internal/calendar"
	"github.com/roach88/autocal/internal/conflict"
	"github.com/roach88/autocal/internal/event"
	"github.com/roach88/autocal/internal/store"
)

// addRequest is the POST /api/events body: a draft plus the override flag.
type addRequest struct {
	event.Draft
	ForceAdd bool `json:"forceAdd"`
}

// errorResponse is the uniform failure shape.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	cal := s.session(w, r)

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON in request body"})
		return
	}

	result, err := cal.AddEvent(r.Context(), req.Draft, req.ForceAdd)
	if err != nil {
		s.writeError(w, cal, err)
		return
	}

	if !result.Created() {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success":      false,
			"hasConflicts": true,
			"conflicts":    result.Conflicts,
			"event":        result.Event,
			"message":      "Event conflicts detected. Add forceAdd: true to override.",
		})
		return
	}

	message := "Event added successfully"
	if len(result.Conflicts) > 0 {
		message = "Event added despite conflicts"
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"event":     result.Event,
		"conflicts": result.Conflicts,
		"message":   message,
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	cal := s.session(w, r)

	events, err := cal.ListEvents(r.Context())
	if err != nil {
		s.writeError(w, cal, err)
		return
	}
	count, err := cal.CountEvents(r.Context())
	if err != nil {
		s.writeError(w, cal, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"events":      events,
		"count":       count,
		"totalEvents": len(events),
	})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	cal := s.session(w, r)

	removed, err := cal.DeleteEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, cal, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"deletedEvent": removed,
		"message":      "Event deleted successfully",
	})
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	cal := s.session(w, r)

	var patch event.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON in request body"})
		return
	}

	updated, err := cal.UpdateEvent(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, cal, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"event":   updated,
		"message": "Event updated successfully",
	})
}

func (s *Server) handleCheckConflicts(w http.ResponseWriter, r *http.Request) {
	cal := s.session(w, r)

	var draft event.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON in request body"})
		return
	}

	conflicts, err := cal.CheckConflicts(r.Context(), draft)
	if err != nil {
		s.writeError(w, cal, err)
		return
	}
	if conflicts == nil {
		conflicts = []conflict.Conflict{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"hasConflicts": len(conflicts) > 0,
		"conflicts":    conflicts,
	})
}

// writeError maps the error taxonomy onto HTTP statuses:
// validation -> 400 (fix your input), not found -> 404 (nothing to act on),
// storage -> 500 (try again later). Conflicts are not errors and are
// handled by the add path directly.
func (s *Server) writeError(w http.ResponseWriter, cal *calendar.Calendar, err error) {
	switch {
	case event.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Event not found"})
	default:
		s.logger.Error("request failed", "session", cal.Session(), "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
