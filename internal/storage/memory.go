// Package storage contains the in-memory record and staff stores used when no
// database is configured, and by tests.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/auth"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

// StudentStore keeps student records in a map guarded by an RWMutex.
type StudentStore struct {
	mu       sync.RWMutex
	students map[string]student.Record
	rollNos  map[string]string
}

// NewStudentStore constructs an empty StudentStore.
func NewStudentStore() *StudentStore {
	return &StudentStore{
		students: make(map[string]student.Record),
		rollNos:  make(map[string]string),
	}
}

// List returns every record ordered by name.
func (m *StudentStore) List(_ context.Context) ([]student.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]student.Record, 0, len(m.students))
	for _, rec := range m.students {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].RollNo < out[j].RollNo
	})
	return out, nil
}

// Get returns a copy of the record with id.
func (m *StudentStore) Get(_ context.Context, id string) (student.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.students[id]
	if !ok {
		return student.Record{}, apperrors.NotFound("Student not found")
	}
	return rec, nil
}

// FindByRollNo returns the record holding rollNo.
func (m *StudentStore) FindByRollNo(_ context.Context, rollNo string) (student.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.rollNos[rollNo]
	if !ok {
		return student.Record{}, apperrors.NotFound("Student not found")
	}
	return m.students[id], nil
}

// Create inserts rec, assigning its id. Roll numbers are unique.
func (m *StudentStore) Create(_ context.Context, rec *student.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.rollNos[rec.RollNo]; taken {
		return apperrors.Conflict(fmt.Sprintf("Student with roll number %s already exists", rec.RollNo))
	}
	now := time.Now().UTC()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	m.students[rec.ID] = *rec
	m.rollNos[rec.RollNo] = rec.ID
	return nil
}

// Update replaces every field of an existing record.
func (m *StudentStore) Update(_ context.Context, rec *student.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.students[rec.ID]
	if !ok {
		return apperrors.NotFound("Student not found")
	}
	if owner, taken := m.rollNos[rec.RollNo]; taken && owner != rec.ID {
		return apperrors.Conflict(fmt.Sprintf("Student with roll number %s already exists", rec.RollNo))
	}
	delete(m.rollNos, prev.RollNo)
	rec.CreatedAt = prev.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	m.students[rec.ID] = *rec
	m.rollNos[rec.RollNo] = rec.ID
	return nil
}

// Delete removes the record with id.
func (m *StudentStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.students[id]
	if !ok {
		return apperrors.NotFound("Student not found")
	}
	delete(m.students, id)
	delete(m.rollNos, rec.RollNo)
	return nil
}

// StaffStore keeps staff accounts keyed by lower-cased email.
type StaffStore struct {
	mu    sync.RWMutex
	staff map[string]auth.Staff
}

// NewStaffStore constructs an empty StaffStore.
func NewStaffStore() *StaffStore {
	return &StaffStore{staff: make(map[string]auth.Staff)}
}

// Create adds an account.
func (m *StaffStore) Create(_ context.Context, s *auth.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if _, taken := m.staff[s.Email]; taken {
		return apperrors.Conflict(fmt.Sprintf("Staff account %s already exists", s.Email))
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	m.staff[s.Email] = *s
	return nil
}

// FindByEmail looks an account up by email.
func (m *StaffStore) FindByEmail(_ context.Context, email string) (auth.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.staff[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return auth.Staff{}, apperrors.NotFound("Staff account not found")
	}
	return s, nil
}

// List returns every account ordered by email, without password hashes.
func (m *StaffStore) List(_ context.Context) ([]auth.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]auth.Staff, 0, len(m.staff))
	for _, s := range m.staff {
		s.PasswordHash = ""
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
