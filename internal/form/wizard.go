package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

const (
	// ListingPath is where the portal goes after a successful submission.
	ListingPath = "/students"

	requiredMessage = "Please fill in all required fields."
	genericFailure  = "Error submitting student details. Please try again."
)

// Snapshot is a read-only view of a wizard.
type Snapshot struct {
	Step        int             `json:"step"`
	StepFields  []student.Field `json:"stepFields"`
	CanSubmit   bool            `json:"canSubmit"`
	Values      student.Record  `json:"values"`
	EmptyFields []student.Field `json:"emptyFields"`
	PhotoLabel  string          `json:"photoLabel"`
	PhotoError  string          `json:"photoError,omitempty"`
	PhotoSize   int64           `json:"photoSize,omitempty"`
	Submitting  bool            `json:"submitting"`
	SubmitError string          `json:"submitError,omitempty"`
}

// Outcome describes a successful submission.
type Outcome struct {
	Record   student.Record `json:"record"`
	Redirect string         `json:"redirect"`
}

// Wizard is one staff member's add-student session.
type Wizard struct {
	mu        sync.Mutex
	gate      Gate
	submitter *Submitter

	draft       Draft
	nav         Navigator
	empty       EmptySet
	photoLabel  string
	photoError  string
	submitError string
	submitting  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWizard starts an empty draft on step 1.
func NewWizard(gate Gate, submitter *Submitter) *Wizard {
	ctx, cancel := context.WithCancel(context.Background())
	return &Wizard{
		gate:       gate,
		submitter:  submitter,
		nav:        NewNavigator(),
		empty:      EmptySet{},
		photoLabel: DefaultPhotoLabel,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Close tears the wizard down and cancels an in-flight submission.
func (w *Wizard) Close() {
	w.cancel()
}

// Snapshot returns the current state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wizard) snapshotLocked() Snapshot {
	return Snapshot{
		Step:        w.nav.Step(),
		StepFields:  student.StepFields(w.nav.Step()),
		CanSubmit:   w.nav.CanSubmit(),
		Values:      w.draft.Values,
		EmptyFields: w.empty.Fields(),
		PhotoLabel:  w.photoLabel,
		PhotoError:  w.photoError,
		PhotoSize:   w.draft.Photo.Size(),
		Submitting:  w.submitting,
		SubmitError: w.submitError,
	}
}

// SetField writes one value. A field marked empty is unmarked as soon as it
// receives a non-blank value.
func (w *Wizard) SetField(f student.Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.draft.Values.Set(f, value) {
		return apperrors.Invalid(fmt.Sprintf("unknown field %q", f))
	}
	if !isBlank(value) {
		w.empty.Remove(f)
	}
	return nil
}

// SelectPhoto attaches a photo. An oversized photo clears the selection.
func (w *Wizard) SelectPhoto(p Photo) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p.Size() > w.submitter.MaxPhotoBytes() {
		w.clearPhotoLocked()
		err := w.submitter.photoTooLarge()
		w.photoError = err.Error()
		return err
	}
	w.draft.Photo = &p
	w.photoLabel = p.Name
	w.photoError = ""
	return nil
}

// ClearPhoto drops the selected photo.
func (w *Wizard) ClearPhoto() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clearPhotoLocked()
	w.photoError = ""
}

func (w *Wizard) clearPhotoLocked() {
	w.draft.Photo = nil
	w.photoLabel = DefaultPhotoLabel
}

// Next moves forward one step.
func (w *Wizard) Next() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nav.Next()
	return w.snapshotLocked()
}

// Previous moves back one step.
func (w *Wizard) Previous() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nav.Previous()
	return w.snapshotLocked()
}

// Submit validates the draft and, when allowed, uploads the photo and creates
// the record. On failure the draft is kept so it can be submitted again.
func (w *Wizard) Submit(ctx context.Context) (Outcome, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return Outcome{}, ErrSubmitInProgress
	}
	if !w.nav.CanSubmit() {
		w.mu.Unlock()
		return Outcome{}, ErrNotFinalStep
	}
	verdict := w.gate.Check(&w.draft)
	w.empty = verdict.Empty
	if verdict.Blocked {
		w.mu.Unlock()
		return Outcome{}, apperrors.New(ErrBlocked, requiredMessage)
	}
	w.submitting = true
	w.submitError = ""
	draft := w.draft.clone()
	w.mu.Unlock()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	unhook := context.AfterFunc(w.ctx, stop)
	defer unhook()

	rec, err := w.submitter.Submit(runCtx, draft)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		if errors.Is(err, ErrPhotoTooLarge) {
			w.clearPhotoLocked()
			w.photoError = err.Error()
			return Outcome{}, err
		}
		w.submitError = apperrors.Message(err, genericFailure)
		return Outcome{}, err
	}
	w.draft.Reset()
	w.photoLabel = DefaultPhotoLabel
	w.photoError = ""
	w.nav.Reset()
	w.empty = EmptySet{}
	return Outcome{Record: rec, Redirect: ListingPath}, nil
}
