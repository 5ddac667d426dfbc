package server

import (
	"net/http"

	"github.com/dharsanguruparan/HostelDesk/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	auth.Session
	Redirect string `json:"redirect"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	sess, err := s.deps.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.log.Info().Str("staff", sess.StaffID).Msg("signed in")
	respondJSON(w, http.StatusOK, loginResponse{Session: sess, Redirect: "/students"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	if err := s.deps.Auth.SignOut(r.Context(), sess); err != nil {
		s.respondError(w, err)
		return
	}
	s.log.Info().Str("staff", sess.StaffID).Msg("signed out")
	respondJSON(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"staffId":   sess.StaffID,
		"email":     sess.Email,
		"expiresAt": sess.ExpiresAt,
	})
}
