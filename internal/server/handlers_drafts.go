package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/form"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

const photoField = "photo"

func (s *Server) currentDraft(w http.ResponseWriter, r *http.Request) (*form.Wizard, bool) {
	wiz, err := s.deps.Drafts.Get(session(r).StaffID)
	if err != nil {
		s.respondError(w, err)
		return nil, false
	}
	return wiz, true
}

func (s *Server) handleOpenDraft(w http.ResponseWriter, r *http.Request) {
	wiz := s.deps.Drafts.Open(session(r).StaffID)
	respondJSON(w, http.StatusCreated, wiz.Snapshot())
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	wiz, ok := s.currentDraft(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, wiz.Snapshot())
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	s.deps.Drafts.Discard(session(r).StaffID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDraftFields(w http.ResponseWriter, r *http.Request) {
	wiz, ok := s.currentDraft(w, r)
	if !ok {
		return
	}
	values, err := s.decodeFields(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	for f, v := range values {
		if err := wiz.SetField(f, v); err != nil {
			s.respondError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, wiz.Snapshot())
}

// decodeFields reads a {"field":"value"} object. Every name is checked before
// anything is written.
func (s *Server) decodeFields(r *http.Request) (map[student.Field]string, error) {
	var raw map[string]string
	if err := s.decodeJSON(r, &raw); err != nil {
		return nil, err
	}
	if err := s.validate.Var(raw, "min=1"); err != nil {
		return nil, apperrors.Invalid("No fields to update")
	}
	out := make(map[student.Field]string, len(raw))
	for name, v := range raw {
		f, err := student.ParseField(name)
		if err != nil {
			return nil, apperrors.Invalid("Unknown field " + name)
		}
		out[f] = v
	}
	return out, nil
}

func (s *Server) handleDraftPhoto(w http.ResponseWriter, r *http.Request) {
	wiz, ok := s.currentDraft(w, r)
	if !ok {
		return
	}
	photo, err := s.readPhoto(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := wiz.SelectPhoto(photo); err != nil {
		snap := wiz.Snapshot()
		status := statusFor(err)
		respondJSON(w, status, errorBody{Error: messageFor(err, status), Draft: &snap})
		return
	}
	respondJSON(w, http.StatusOK, wiz.Snapshot())
}

// readPhoto streams the multipart body and keeps at most one byte more than
// the ceiling, which is enough for the wizard to reject it.
func (s *Server) readPhoto(r *http.Request) (form.Photo, error) {
	limit := s.deps.MaxPhotoBytes + 1
	mr, err := r.MultipartReader()
	if err != nil {
		return form.Photo{}, apperrors.Invalid("expecting multipart form")
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form.Photo{}, apperrors.Invalid("missing photo part")
		}
		if err != nil {
			return form.Photo{}, apperrors.Invalid("failed to read upload")
		}
		if part.FormName() != photoField {
			part.Close()
			continue
		}
		return readPhotoPart(part, limit)
	}
}

func readPhotoPart(part *multipart.Part, limit int64) (form.Photo, error) {
	defer part.Close()
	data, err := io.ReadAll(io.LimitReader(part, limit))
	if err != nil {
		return form.Photo{}, apperrors.Invalid("failed to read upload")
	}
	contentType := part.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return form.Photo{
		Name:        filepath.Base(part.FileName()),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *Server) handleClearDraftPhoto(w http.ResponseWriter, r *http.Request) {
	wiz, ok := s.currentDraft(w, r)
	if !ok {
		return
	}
	wiz.ClearPhoto()
	respondJSON(w, http.StatusOK, wiz.Snapshot())
}

func (s *Server) handleDraftNext(w http.ResponseWriter, r *http.Request) {
	wiz, ok := s.currentDraft(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, wiz.Next())
}

func (s *Server) handleDraftPrevious(w http.ResponseWriter, r *http.Request) {
	wiz, ok := s.currentDraft(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, wiz.Previous())
}

func (s *Server) handleDraftSubmit(w http.ResponseWriter, r *http.Request) {
	wiz, ok := s.currentDraft(w, r)
	if !ok {
		return
	}
	out, err := wiz.Submit(r.Context())
	if err != nil {
		if !errors.Is(err, form.ErrSubmitInProgress) && !errors.Is(err, form.ErrNotFinalStep) {
			s.deps.Metrics.Submission(err)
		}
		snap := wiz.Snapshot()
		status := statusFor(err)
		body := errorBody{Error: messageFor(err, status), Draft: &snap}
		switch {
		case errors.Is(err, form.ErrBlocked):
			for _, f := range snap.EmptyFields {
				body.EmptyFields = append(body.EmptyFields, string(f))
			}
		case status >= http.StatusInternalServerError && snap.SubmitError != "":
			body.Error = snap.SubmitError
		}
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
			s.log.Error().Err(err).Str("staff", session(r).StaffID).Msg("submit failed")
		}
		respondJSON(w, status, body)
		return
	}
	s.deps.Metrics.Submission(nil)
	s.log.Info().Str("student", out.Record.ID).Str("roll_no", out.Record.RollNo).Msg("student added")
	respondJSON(w, http.StatusCreated, out)
}
