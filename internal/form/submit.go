package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

var (
	// ErrPhotoTooLarge is returned before any network call when the photo
	// exceeds the ceiling.
	ErrPhotoTooLarge = errors.New("photo exceeds size limit")
	// ErrBlocked means the gate refused the draft.
	ErrBlocked = errors.New("required fields missing")
	// ErrSubmitInProgress rejects a second submit while one is running.
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrNotFinalStep rejects submit before the last step.
	ErrNotFinalStep = errors.New("submit is only available on the last step")
)

// PhotoUploader stores a passport photo keyed by roll number.
type PhotoUploader interface {
	PutPhoto(ctx context.Context, rollNo string, data []byte, contentType string) error
}

// RecordCreator stores a new student record and fills in its ID.
type RecordCreator interface {
	FindByRollNo(ctx context.Context, rollNo string) (student.Record, error)
	Create(ctx context.Context, rec *student.Record) error
}

// Submitter uploads the photo and then creates the record, in that order.
type Submitter struct {
	photos   PhotoUploader
	records  RecordCreator
	maxPhoto int64
}

// NewSubmitter constructs a Submitter with the given photo ceiling in bytes.
func NewSubmitter(photos PhotoUploader, records RecordCreator, maxPhoto int64) *Submitter {
	return &Submitter{photos: photos, records: records, maxPhoto: maxPhoto}
}

// MaxPhotoBytes returns the photo ceiling.
func (s *Submitter) MaxPhotoBytes() int64 {
	return s.maxPhoto
}

// Submit runs the upload and create calls sequentially. Nothing is retried.
// A taken roll number is refused before the upload so the existing student's
// photo is never overwritten.
func (s *Submitter) Submit(ctx context.Context, d Draft) (student.Record, error) {
	if d.Photo != nil && d.Photo.Size() > s.maxPhoto {
		return student.Record{}, s.photoTooLarge()
	}
	if err := s.checkRollNo(ctx, d.Values.RollNo); err != nil {
		return student.Record{}, err
	}
	if d.Photo != nil {
		if err := s.photos.PutPhoto(ctx, d.Values.RollNo, d.Photo.Data, d.Photo.ContentType); err != nil {
			return student.Record{}, fmt.Errorf("upload photo: %w", err)
		}
	}
	rec := d.Values
	rec.ID = ""
	if err := s.records.Create(ctx, &rec); err != nil {
		return student.Record{}, fmt.Errorf("create student: %w", err)
	}
	return rec, nil
}

func (s *Submitter) checkRollNo(ctx context.Context, rollNo string) error {
	_, err := s.records.FindByRollNo(ctx, rollNo)
	switch {
	case err == nil:
		return apperrors.Conflict(fmt.Sprintf("Student with roll number %s already exists", rollNo))
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("check roll number: %w", err)
	}
}

func (s *Submitter) photoTooLarge() error {
	msg := fmt.Sprintf("File size must be less than %dkb.", s.maxPhoto>>10)
	return apperrors.New(ErrPhotoTooLarge, msg)
}
