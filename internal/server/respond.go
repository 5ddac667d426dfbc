package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/export"
	"github.com/dharsanguruparan/HostelDesk/internal/form"
	"github.com/dharsanguruparan/HostelDesk/internal/logger"
	"github.com/dharsanguruparan/HostelDesk/internal/signing"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Error       string         `json:"error"`
	EmptyFields []string       `json:"emptyFields,omitempty"`
	Draft       *form.Snapshot `json:"draft,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn().Err(err).Msg("encode json failed")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, form.ErrBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials), errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, signing.ErrExpired), errors.Is(err, signing.ErrSignature):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, form.ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, form.ErrSubmitInProgress),
		errors.Is(err, form.ErrNotFinalStep),
		errors.Is(err, export.ErrJobRunning):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func messageFor(err error, status int) string {
	var fallback string
	switch {
	case status >= http.StatusInternalServerError:
		fallback = "Something went wrong"
	case errors.Is(err, form.ErrNoDraft),
		errors.Is(err, form.ErrSubmitInProgress),
		errors.Is(err, form.ErrNotFinalStep),
		errors.Is(err, export.ErrJobRunning),
		errors.Is(err, signing.ErrExpired),
		errors.Is(err, signing.ErrSignature):
		fallback = rootMessage(err)
	default:
		fallback = http.StatusText(status)
	}
	return apperrors.Message(err, fallback)
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	respondJSON(w, status, errorBody{Error: messageFor(err, status)})
}

func (s *Server) decodeJSON(r *http.Request, dst interface{}) error {
	body := io.LimitReader(r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperrors.Invalid("Invalid request format")
	}
	return nil
}

func (s *Server) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := s.decodeJSON(r, dst); err != nil {
		return err
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.Invalid(formatValidationError(verrs[0]))
		}
		return apperrors.Invalid("Invalid request format")
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Please fill in all fields"
	case "email":
		return e.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
