package export

import "sync"

// Registry keeps one tracker per staff member.
type Registry struct {
	mu       sync.Mutex
	opts     Options
	trackers map[string]*Tracker
}

// NewRegistry constructs an empty Registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, trackers: make(map[string]*Tracker)}
}

// Get returns the tracker of owner, creating an idle one on first use.
func (r *Registry) Get(owner string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[owner]
	if !ok {
		t = NewTracker(r.opts)
		r.trackers[owner] = t
	}
	return t
}

// Discard cancels and forgets the tracker of owner.
func (r *Registry) Discard(owner string) {
	r.mu.Lock()
	t, ok := r.trackers[owner]
	delete(r.trackers, owner)
	r.mu.Unlock()
	if ok {
		t.Cancel()
	}
}
