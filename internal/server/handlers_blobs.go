package server

import (
	"bytes"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
)

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	if s.deps.Blobs == nil {
		s.respondError(w, apperrors.NotFound("Blob not found"))
		return
	}
	key := chi.URLParam(r, "*")
	q := r.URL.Query()
	if key == "" || q.Get("expires") == "" || q.Get("signature") == "" {
		s.respondError(w, apperrors.Invalid("missing parameters"))
		return
	}
	obj, err := s.deps.Blobs.Open(key, q.Get("expires"), q.Get("signature"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", "inline; filename=\""+path.Base(key)+"\"")
	http.ServeContent(w, r, path.Base(key), obj.ModTime, bytes.NewReader(obj.Data))
}
