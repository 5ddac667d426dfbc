// Package server exposes the portal over HTTP: staff sessions, the add-student
// draft, the student listing and detail operations, and PDF exports.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/HostelDesk/internal/auth"
	"github.com/dharsanguruparan/HostelDesk/internal/blobstore"
	"github.com/dharsanguruparan/HostelDesk/internal/export"
	"github.com/dharsanguruparan/HostelDesk/internal/form"
	"github.com/dharsanguruparan/HostelDesk/internal/metrics"
	"github.com/dharsanguruparan/HostelDesk/internal/records"
)

// BlobOpener serves signed in-memory blobs. It is nil when blobs live in S3.
type BlobOpener interface {
	Open(key, expires, signature string) (blobstore.Object, error)
}

// Deps are the services the handlers call.
type Deps struct {
	Address       string
	MaxPhotoBytes int64
	Auth          *auth.Service
	Drafts        *form.Registry
	Records       *records.Service
	Exports       *export.Service
	Blobs         BlobOpener
	Metrics       *metrics.Metrics
	Log           zerolog.Logger
	// Ready reports whether backing stores are reachable; nil means always.
	Ready func(ctx context.Context) error
}

// Server hosts the HTTP handlers.
type Server struct {
	deps     Deps
	log      zerolog.Logger
	validate *validator.Validate
	handler  http.Handler
}

// New builds the router.
func New(deps Deps) *Server {
	s := &Server{
		deps:     deps,
		log:      deps.Log.With().Str("component", "http").Logger(),
		validate: validator.New(),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve launches the HTTP server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.deps.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	s.log.Info().Str("address", s.deps.Address).Msg("api listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer, s.requestLogger, corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.deps.Metrics.Handler())
	r.Post("/auth/login", s.handleLogin)
	r.Get(blobstore.BlobPath+"*", s.handleBlob)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.deps.Auth, s.respondError))

		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)

		r.Post("/drafts", s.handleOpenDraft)
		r.Route("/drafts/current", func(r chi.Router) {
			r.Get("/", s.handleGetDraft)
			r.Delete("/", s.handleDiscardDraft)
			r.Patch("/fields", s.handleDraftFields)
			r.Put("/photo", s.handleDraftPhoto)
			r.Delete("/photo", s.handleClearDraftPhoto)
			r.Post("/next", s.handleDraftNext)
			r.Post("/previous", s.handleDraftPrevious)
			r.Post("/submit", s.handleDraftSubmit)
		})

		r.Route("/students", func(r chi.Router) {
			r.Get("/", s.handleListStudents)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetStudent)
				r.Put("/", s.handleReplaceStudent)
				r.Delete("/", s.handleDeleteStudent)
				r.Get("/photo", s.handleStudentPhoto)
				r.Get("/edit", s.handleGetEdit)
				r.Post("/edit", s.handleBeginEdit)
				r.Patch("/edit", s.handleEditFields)
				r.Post("/edit/save", s.handleSaveEdit)
				r.Delete("/edit", s.handleCancelEdit)
				r.Post("/export", s.handleStartExport)
			})
		})

		r.Get("/exports/current", s.handleCurrentExport)
		r.Get("/exports/current/events", s.handleExportEvents)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("health check failed")
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func session(r *http.Request) auth.Session {
	sess, _ := auth.FromContext(r.Context())
	return sess
}
