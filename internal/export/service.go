package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/blobstore"
	"github.com/dharsanguruparan/HostelDesk/internal/metrics"
	pdfutil "github.com/dharsanguruparan/HostelDesk/internal/pdf"
	"github.com/dharsanguruparan/HostelDesk/internal/render"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

const (
	photoPending  = "Wait till image is loaded"
	renderFailure = "Error generating PDF. Please try again."
)

// RecordGetter loads a student record.
type RecordGetter interface {
	Get(ctx context.Context, id string) (student.Record, error)
}

// Blobs reads photos and stores the rendered documents.
type Blobs interface {
	GetPhoto(ctx context.Context, rollNo string) ([]byte, error)
	PutDocument(ctx context.Context, key string, data []byte) error
	DocumentURL(ctx context.Context, key string) (string, error)
}

// Renderer converts LaTeX and a photo into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, latex string, image []byte) ([]byte, error)
}

// Service starts exports on the caller's tracker.
type Service struct {
	records  RecordGetter
	blobs    Blobs
	renderer Renderer
	trackers *Registry
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewService constructs a Service.
func NewService(records RecordGetter, blobs Blobs, renderer Renderer, trackers *Registry, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		records:  records,
		blobs:    blobs,
		renderer: renderer,
		trackers: trackers,
		metrics:  m,
		log:      log.With().Str("component", "export").Logger(),
	}
}

// Trackers returns the per-staff trackers.
func (s *Service) Trackers() *Registry {
	return s.trackers
}

// Start begins exporting studentID for owner. An unknown student fails
// before any job is created.
func (s *Service) Start(ctx context.Context, owner, studentID string) (Job, error) {
	rec, err := s.records.Get(ctx, studentID)
	if err != nil {
		return Job{}, fmt.Errorf("get student: %w", err)
	}
	started := time.Now()
	return s.trackers.Get(owner).Start(ctx, studentID, func(ctx context.Context, jobID string) (string, error) {
		url, err := s.Run(ctx, jobID, rec)
		s.metrics.Export(err, time.Since(started))
		if err != nil {
			s.log.Warn().Err(err).Str("job", jobID).Str("student", studentID).Msg("export failed")
		} else {
			s.log.Info().Str("job", jobID).Str("student", studentID).Dur("took", time.Since(started)).Msg("export finished")
		}
		return url, err
	})
}

// Run renders rec into a PDF, stores it and returns a download URL.
func (s *Service) Run(ctx context.Context, jobID string, rec student.Record) (string, error) {
	photo, err := s.blobs.GetPhoto(ctx, rec.RollNo)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.New(err, photoPending)
		}
		return "", fmt.Errorf("get photo: %w", err)
	}
	if len(photo) == 0 {
		return "", apperrors.Invalid(photoPending)
	}
	latex, err := render.LaTeX(rec)
	if err != nil {
		return "", err
	}
	doc, err := s.renderer.Render(ctx, latex, photo)
	if err != nil {
		var remote *render.RemoteError
		if errors.As(err, &remote) {
			return "", apperrors.New(err, remote.Error())
		}
		return "", apperrors.New(fmt.Errorf("render document: %w", err), renderFailure)
	}
	if _, err := pdfutil.Inspect(doc); err != nil {
		return "", apperrors.New(fmt.Errorf("inspect document: %w", err), renderFailure)
	}
	key := blobstore.DocumentKey(rec.RollNo, jobID)
	if err := s.blobs.PutDocument(ctx, key, doc); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	url, err := s.blobs.DocumentURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("document url: %w", err)
	}
	return url, nil
}
