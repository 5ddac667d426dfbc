// Package export runs PDF exports of student records and tracks their
// progress for the staff member who started them.
package export

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
)

// State of a tracker.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// ErrJobRunning rejects a start while an export is still running.
var ErrJobRunning = errors.New("an export is already running")

const cancelledMessage = "Export cancelled"

// Job is a snapshot of one export.
type Job struct {
	ID          string     `json:"id,omitempty"`
	StudentID   string     `json:"studentId,omitempty"`
	State       State      `json:"state"`
	Progress    int        `json:"progress"`
	DocumentURL string     `json:"documentUrl,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// Options shape the synthetic progress: Step is added every Tick until Cap.
type Options struct {
	Tick time.Duration
	Step int
	Cap  int
}

// RunFunc does the real work of a job and returns the document URL.
type RunFunc func(ctx context.Context, jobID string) (string, error)

// Tracker holds the current export of one staff member. Progress ticks are
// cosmetic; the result of RunFunc always decides the final state.
type Tracker struct {
	opts Options

	mu     sync.Mutex
	job    Job
	cancel context.CancelFunc

	listenerLock sync.RWMutex
	listeners    map[chan Job]struct{}
}

// NewTracker returns an idle tracker.
func NewTracker(opts Options) *Tracker {
	return &Tracker{
		opts:      opts,
		job:       Job{State: StateIdle},
		listeners: make(map[chan Job]struct{}),
	}
}

// Snapshot returns the current job.
func (t *Tracker) Snapshot() Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job
}

// Start begins a new job unless one is running. Values of ctx are kept but
// its cancellation is not: the job outlives the request that started it and
// ends through Cancel.
func (t *Tracker) Start(ctx context.Context, studentID string, run RunFunc) (Job, error) {
	t.mu.Lock()
	if t.job.State == StateRunning {
		t.mu.Unlock()
		return Job{}, ErrJobRunning
	}
	now := time.Now().UTC()
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t.job = Job{ID: uuid.NewString(), StudentID: studentID, State: StateRunning, StartedAt: &now}
	t.cancel = cancel
	job := t.job
	t.mu.Unlock()

	t.broadcast(job)
	go t.tick(jobCtx, job.ID)
	go func() {
		url, err := run(jobCtx, job.ID)
		t.finish(job.ID, url, err)
	}()
	return job, nil
}

func (t *Tracker) tick(ctx context.Context, id string) {
	ticker := time.NewTicker(t.opts.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.advance(id) {
				return
			}
		}
	}
}

// advance applies one tick and reports whether more ticks are useful.
func (t *Tracker) advance(id string) bool {
	t.mu.Lock()
	if t.job.ID != id || t.job.State != StateRunning {
		t.mu.Unlock()
		return false
	}
	t.job.Progress += t.opts.Step
	if t.job.Progress > t.opts.Cap {
		t.job.Progress = t.opts.Cap
	}
	job := t.job
	t.mu.Unlock()
	t.broadcast(job)
	return job.Progress < t.opts.Cap
}

func (t *Tracker) finish(id, url string, err error) {
	t.mu.Lock()
	if t.job.ID != id || t.job.State != StateRunning {
		t.mu.Unlock()
		return
	}
	t.cancel()
	now := time.Now().UTC()
	t.job.FinishedAt = &now
	if err != nil {
		t.job.State = StateFailed
		t.job.Progress = 0
		t.job.DocumentURL = ""
		t.job.Error = apperrors.Message(err, err.Error())
	} else {
		t.job.State = StateSucceeded
		t.job.Progress = 100
		t.job.DocumentURL = url
	}
	job := t.job
	t.mu.Unlock()
	t.broadcast(job)
}

// Cancel stops a running job. It is used when the tracker's owner goes away.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	if t.job.State != StateRunning {
		t.mu.Unlock()
		return
	}
	t.cancel()
	now := time.Now().UTC()
	t.job.State = StateFailed
	t.job.Progress = 0
	t.job.Error = cancelledMessage
	t.job.FinishedAt = &now
	job := t.job
	t.mu.Unlock()
	t.broadcast(job)
}

// Subscribe returns a channel that receives every state change. Slow
// listeners miss updates rather than block the tracker.
func (t *Tracker) Subscribe() (<-chan Job, func()) {
	ch := make(chan Job, 16)
	t.listenerLock.Lock()
	t.listeners[ch] = struct{}{}
	t.listenerLock.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.listenerLock.Lock()
			delete(t.listeners, ch)
			t.listenerLock.Unlock()
		})
	}
}

func (t *Tracker) broadcast(job Job) {
	t.listenerLock.RLock()
	defer t.listenerLock.RUnlock()
	for listener := range t.listeners {
		select {
		case listener <- job:
		default:
		}
	}
}
