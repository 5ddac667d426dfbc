package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const keepAliveInterval = 15 * time.Second

func (s *Server) handleStartExport(w http.ResponseWriter, r *http.Request) {
	job, err := s.deps.Exports.Start(r.Context(), session(r).StaffID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleCurrentExport(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Exports.Trackers().Get(session(r).StaffID).Snapshot())
}

// handleExportEvents streams the caller's export progress as Server-Sent
// Events, starting with the current snapshot.
func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	tracker := s.deps.Exports.Trackers().Get(session(r).StaffID)
	updates, unsubscribe := tracker.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(v interface{}) bool {
		data, err := json.Marshal(v)
		if err != nil {
			s.log.Warn().Err(err).Msg("marshal progress")
			return true
		}
		if _, err := fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(tracker.Snapshot()) {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case job := <-updates:
			if !send(job) {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
