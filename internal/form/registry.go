package form

import (
	"errors"
	"sync"
)

// ErrNoDraft is returned when a staff member has no open draft.
var ErrNoDraft = errors.New("no open draft")

// Registry keeps one wizard per staff member.
type Registry struct {
	mu        sync.RWMutex
	gate      Gate
	submitter *Submitter
	wizards   map[string]*Wizard
}

// NewRegistry constructs an empty Registry.
func NewRegistry(gate Gate, submitter *Submitter) *Registry {
	return &Registry{
		gate:      gate,
		submitter: submitter,
		wizards:   make(map[string]*Wizard),
	}
}

// Open starts a fresh draft for owner, tearing down any previous one.
func (r *Registry) Open(owner string) *Wizard {
	w := NewWizard(r.gate, r.submitter)
	r.mu.Lock()
	prev := r.wizards[owner]
	r.wizards[owner] = w
	r.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return w
}

// Get returns the open draft of owner.
func (r *Registry) Get(owner string) (*Wizard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wizards[owner]
	if !ok {
		return nil, ErrNoDraft
	}
	return w, nil
}

// Discard drops the draft of owner and cancels its in-flight submission.
func (r *Registry) Discard(owner string) {
	r.mu.Lock()
	w, ok := r.wizards[owner]
	delete(r.wizards, owner)
	r.mu.Unlock()
	if ok {
		w.Close()
	}
}
