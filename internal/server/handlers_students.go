package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/records"
)

type listResponse struct {
	Students []records.View `json:"students"`
	Count    int            `json:"count"`
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	views, err := s.deps.Records.List(r.Context(), q.Get("key"), q.Get("q"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Students: views, Count: len(views)})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleReplaceStudent(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := s.decodeJSON(r, &values); err != nil {
		s.respondError(w, err)
		return
	}
	view, err := s.deps.Records.Replace(r.Context(), chi.URLParam(r, "id"), values)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Records.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.log.Info().Str("student", out.ID).Str("staff", session(r).StaffID).Msg("student deleted")
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleStudentPhoto(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if view.PhotoURL == "" {
		s.respondError(w, apperrors.NotFound("Photo not found"))
		return
	}
	http.Redirect(w, r, view.PhotoURL, http.StatusFound)
}

func (s *Server) handleGetEdit(w http.ResponseWriter, r *http.Request) {
	buf, err := s.deps.Records.Edit(session(r).StaffID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buf)
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	buf, err := s.deps.Records.BeginEdit(r.Context(), session(r).StaffID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buf)
}

func (s *Server) handleEditFields(w http.ResponseWriter, r *http.Request) {
	var raw map[string]string
	if err := s.decodeJSON(r, &raw); err != nil {
		s.respondError(w, err)
		return
	}
	buf, err := s.deps.Records.SetFields(session(r).StaffID, chi.URLParam(r, "id"), raw)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buf)
}

func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Records.Save(r.Context(), session(r).StaffID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.deps.Records.CancelEdit(session(r).StaffID, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
