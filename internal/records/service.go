// Package records serves the student listing, the detail view and the edit
// and delete operations on stored records.
package records

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/queue"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

// ListingPath is where the portal goes after a delete.
const ListingPath = "/students"

// ErrNoEdit is returned when an edit operation has no open buffer.
var ErrNoEdit = apperrors.NotFound("No edit in progress for this student")

// Store is the remote record store.
type Store interface {
	List(ctx context.Context) ([]student.Record, error)
	Get(ctx context.Context, id string) (student.Record, error)
	Update(ctx context.Context, rec *student.Record) error
	Delete(ctx context.Context, id string) error
}

// Photos resolves a student's photo link and follows roll number changes.
type Photos interface {
	PhotoURL(ctx context.Context, rollNo string) (string, error)
	MoveStudent(ctx context.Context, fromRollNo, toRollNo string) (int, error)
}

// readOnlyKeys may appear in a full replace body and are ignored.
var readOnlyKeys = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"photoUrl":  true,
}

// PurgeFunc schedules removal of a deleted student's blobs.
type PurgeFunc func(ctx context.Context, payload queue.PurgePayload) error

// View is a record as shown to staff.
type View struct {
	student.Record
	PhotoURL string `json:"photoUrl"`
}

// Deleted is the outcome of a delete.
type Deleted struct {
	ID       string `json:"id"`
	Redirect string `json:"redirect"`
}

type editKey struct {
	owner string
	id    string
}

// Service implements the listing and detail operations.
type Service struct {
	store  Store
	photos Photos
	purge  PurgeFunc
	log    zerolog.Logger

	mu    sync.Mutex
	edits map[editKey]*student.Record
}

// NewService constructs a Service. purge may be nil.
func NewService(store Store, photos Photos, purge PurgeFunc, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		photos: photos,
		purge:  purge,
		log:    log.With().Str("component", "records").Logger(),
		edits:  make(map[editKey]*student.Record),
	}
}

// List returns the records whose key field contains query, ignoring case.
// An empty key searches by name.
func (s *Service) List(ctx context.Context, key, query string) ([]View, error) {
	field := student.Name
	if strings.TrimSpace(key) != "" {
		f, err := student.ParseField(key)
		if err != nil {
			return nil, apperrors.Invalid(fmt.Sprintf("cannot search by %q", key))
		}
		field = f
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	matched := student.Filter(all, field, query)
	out := make([]View, 0, len(matched))
	for _, rec := range matched {
		v, err := s.view(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Get returns one record with its photo link.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("get student: %w", err)
	}
	return s.view(ctx, rec)
}

func (s *Service) view(ctx context.Context, rec student.Record) (View, error) {
	url, err := s.photos.PhotoURL(ctx, rec.RollNo)
	if err != nil {
		return View{}, fmt.Errorf("photo url: %w", err)
	}
	return View{Record: rec, PhotoURL: url}, nil
}

// BeginEdit copies the stored record into owner's edit buffer.
func (s *Service) BeginEdit(ctx context.Context, owner, id string) (student.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return student.Record{}, fmt.Errorf("get student: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := rec
	s.edits[editKey{owner, id}] = &buf
	return buf, nil
}

// Edit returns owner's edit buffer for id.
func (s *Service) Edit(owner, id string) (student.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.edits[editKey{owner, id}]
	if !ok {
		return student.Record{}, ErrNoEdit
	}
	return *buf, nil
}

// SetFields writes values into owner's edit buffer. Unknown names are
// rejected before anything is written.
func (s *Service) SetFields(owner, id string, values map[string]string) (student.Record, error) {
	fields, err := parseValues(values, nil)
	if err != nil {
		return student.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.edits[editKey{owner, id}]
	if !ok {
		return student.Record{}, ErrNoEdit
	}
	for f, v := range fields {
		buf.Set(f, v)
	}
	return *buf, nil
}

func parseValues(values map[string]string, ignore map[string]bool) (map[student.Field]string, error) {
	fields := make(map[student.Field]string, len(values))
	for name, v := range values {
		if ignore[name] {
			continue
		}
		f, err := student.ParseField(name)
		if err != nil {
			return nil, apperrors.Invalid(fmt.Sprintf("unknown field %q", name))
		}
		fields[f] = v
	}
	return fields, nil
}

// Save pushes the whole edit buffer to the store, replacing the record. The
// buffer is kept when the store rejects it.
func (s *Service) Save(ctx context.Context, owner, id string) (View, error) {
	s.mu.Lock()
	buf, ok := s.edits[editKey{owner, id}]
	if !ok {
		s.mu.Unlock()
		return View{}, ErrNoEdit
	}
	rec := *buf
	s.mu.Unlock()

	if err := s.update(ctx, id, &rec); err != nil {
		return View{}, err
	}
	s.mu.Lock()
	delete(s.edits, editKey{owner, id})
	s.mu.Unlock()
	return s.view(ctx, rec)
}

// update replaces the stored record and moves the student's blobs when the
// roll number changed.
func (s *Service) update(ctx context.Context, id string, rec *student.Record) error {
	prev, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}
	rec.ID = id
	if err := s.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if prev.RollNo == rec.RollNo {
		return nil
	}
	moved, err := s.photos.MoveStudent(ctx, prev.RollNo, rec.RollNo)
	if err != nil {
		s.log.Warn().Err(err).Str("student", id).Str("from", prev.RollNo).Str("to", rec.RollNo).Msg("move blobs failed")
		return nil
	}
	s.log.Info().Str("student", id).Int("objects", moved).Msg("blobs moved to new roll number")
	return nil
}

// CancelEdit drops owner's edit buffer for id.
func (s *Service) CancelEdit(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edits, editKey{owner, id})
}

// DiscardOwner drops every edit buffer of owner.
func (s *Service) DiscardOwner(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.edits {
		if k.owner == owner {
			delete(s.edits, k)
		}
	}
}

// Replace stores values as the full new content of id; fields left out
// become empty. Unknown names are rejected before anything is written.
func (s *Service) Replace(ctx context.Context, id string, values map[string]string) (View, error) {
	fields, err := parseValues(values, readOnlyKeys)
	if err != nil {
		return View{}, err
	}
	var rec student.Record
	for f, v := range fields {
		rec.Set(f, v)
	}
	if err := s.update(ctx, id, &rec); err != nil {
		return View{}, err
	}
	return s.view(ctx, rec)
}

// Delete removes id and schedules its blobs for removal. An unknown id
// surfaces the store's not-found error.
func (s *Service) Delete(ctx context.Context, id string) (Deleted, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Deleted{}, fmt.Errorf("get student: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return Deleted{}, fmt.Errorf("delete student: %w", err)
	}
	s.mu.Lock()
	for k := range s.edits {
		if k.id == id {
			delete(s.edits, k)
		}
	}
	s.mu.Unlock()
	if s.purge != nil {
		payload := queue.PurgePayload{StudentID: id, RollNo: rec.RollNo}
		if err := s.purge(ctx, payload); err != nil {
			s.log.Warn().Err(err).Str("student", id).Msg("schedule purge failed")
		}
	}
	return Deleted{ID: id, Redirect: ListingPath}, nil
}
