package export

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/blobstore"
	"github.com/dharsanguruparan/HostelDesk/internal/pdf/pdftest"
	"github.com/dharsanguruparan/HostelDesk/internal/render"
	"github.com/dharsanguruparan/HostelDesk/internal/signing"
	"github.com/dharsanguruparan/HostelDesk/internal/storage"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

var fastTicks = Options{Tick: time.Millisecond, Step: 10, Cap: 100}

func waitState(t *testing.T, tr *Tracker, want State) Job {
	t.Helper()
	require.Eventually(t, func() bool { return tr.Snapshot().State == want }, 2*time.Second, time.Millisecond)
	return tr.Snapshot()
}

func TestTrackerProgressIsMonotonicAndCapped(t *testing.T) {
	tr := NewTracker(Options{Tick: time.Millisecond, Step: 30, Cap: 90})
	updates, unsubscribe := tr.Subscribe()
	defer unsubscribe()

	release := make(chan struct{})
	job, err := tr.Start(context.Background(), "s1", func(ctx context.Context, _ string) (string, error) {
		<-release
		return "/doc.pdf", nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateRunning, job.State)
	assert.Zero(t, job.Progress)

	require.Eventually(t, func() bool { return tr.Snapshot().Progress == 90 }, 2*time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 90, tr.Snapshot().Progress, "ticks never exceed the cap")

	close(release)
	done := waitState(t, tr, StateSucceeded)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, "/doc.pdf", done.DocumentURL)
	assert.NotNil(t, done.FinishedAt)

	last := -1
	timeout := time.After(2 * time.Second)
	for last != 100 {
		select {
		case u := <-updates:
			if u.State == StateRunning {
				assert.GreaterOrEqual(t, u.Progress, last)
			}
			last = u.Progress
		case <-timeout:
			t.Fatal("final update was not broadcast")
		}
	}
}

func TestTrackerResultDominatesTicks(t *testing.T) {
	tr := NewTracker(Options{Tick: time.Hour, Step: 10, Cap: 100})
	job, err := tr.Start(context.Background(), "s1", func(ctx context.Context, _ string) (string, error) {
		return "/fast.pdf", nil
	})
	require.NoError(t, err)
	done := waitState(t, tr, StateSucceeded)
	assert.Equal(t, 100, done.Progress, "success forces 100 without any tick")

	assert.False(t, tr.advance(job.ID), "a late tick is ignored")
	assert.Equal(t, 100, tr.Snapshot().Progress)
}

func TestTrackerFailureResetsProgress(t *testing.T) {
	tr := NewTracker(fastTicks)
	release := make(chan struct{})
	_, err := tr.Start(context.Background(), "s1", func(ctx context.Context, _ string) (string, error) {
		<-release
		return "/ignored.pdf", apperrors.New(errors.New("status 500"), "API request failed with status 500: boom")
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return tr.Snapshot().Progress > 0 }, 2*time.Second, time.Millisecond)

	close(release)
	done := waitState(t, tr, StateFailed)
	assert.Zero(t, done.Progress)
	assert.Empty(t, done.DocumentURL)
	assert.Equal(t, "API request failed with status 500: boom", done.Error)
}

func TestTrackerRejectsConcurrentStartAndRestarts(t *testing.T) {
	tr := NewTracker(fastTicks)
	release := make(chan struct{})
	first, err := tr.Start(context.Background(), "s1", func(ctx context.Context, _ string) (string, error) {
		<-release
		return "/one.pdf", nil
	})
	require.NoError(t, err)

	_, err = tr.Start(context.Background(), "s2", func(ctx context.Context, _ string) (string, error) {
		return "/two.pdf", nil
	})
	assert.ErrorIs(t, err, ErrJobRunning)

	close(release)
	waitState(t, tr, StateSucceeded)

	second, err := tr.Start(context.Background(), "s2", func(ctx context.Context, _ string) (string, error) {
		return "/two.pdf", nil
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Zero(t, second.Progress, "a new job starts from zero")
	done := waitState(t, tr, StateSucceeded)
	assert.Equal(t, "/two.pdf", done.DocumentURL)
	assert.Equal(t, "s2", done.StudentID)
}

func TestRegistryDiscardCancelsRunningJob(t *testing.T) {
	reg := NewRegistry(fastTicks)
	tr := reg.Get("staff-1")
	assert.Same(t, tr, reg.Get("staff-1"))

	var seen error
	var mu sync.Mutex
	finished := make(chan struct{})
	_, err := tr.Start(context.Background(), "s1", func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		mu.Lock()
		seen = ctx.Err()
		mu.Unlock()
		close(finished)
		return "/late.pdf", nil
	})
	require.NoError(t, err)

	reg.Discard("staff-1")
	<-finished
	mu.Lock()
	assert.ErrorIs(t, seen, context.Canceled)
	mu.Unlock()

	job := tr.Snapshot()
	assert.Equal(t, StateFailed, job.State)
	assert.Empty(t, job.DocumentURL, "a result after cancel is dropped")
	assert.NotSame(t, tr, reg.Get("staff-1"))
}

type fakeRenderer struct {
	out   []byte
	err   error
	latex string
	image []byte
}

func (f *fakeRenderer) Render(_ context.Context, latex string, image []byte) ([]byte, error) {
	f.latex, f.image = latex, image
	return f.out, f.err
}

func newTestService(t *testing.T, r Renderer) (*Service, *blobstore.Memory, student.Record) {
	t.Helper()
	records := storage.NewStudentStore()
	rec := student.Record{Name: "Asha", RollNo: "21CS001"}
	require.NoError(t, records.Create(context.Background(), &rec))
	blobs := blobstore.NewMemory(signing.NewSigner([]byte("k")), time.Minute)
	return NewService(records, blobs, r, NewRegistry(fastTicks), nil, zerolog.Nop()), blobs, rec
}

func TestServiceExportsDocument(t *testing.T) {
	r := &fakeRenderer{out: pdftest.Document(1)}
	svc, blobs, rec := newTestService(t, r)
	require.NoError(t, blobs.PutPhoto(context.Background(), rec.RollNo, []byte("jpeg"), ""))

	job, err := svc.Start(context.Background(), "staff-1", rec.ID)
	require.NoError(t, err)
	done := waitState(t, svc.Trackers().Get("staff-1"), StateSucceeded)
	assert.Equal(t, job.ID, done.ID)
	assert.Contains(t, done.DocumentURL, "/blobs/students/21CS001/exports/"+job.ID+".pdf?")
	assert.Equal(t, []byte("jpeg"), r.image)
	assert.Contains(t, r.latex, "Asha")
}

func TestServiceWaitsForPhoto(t *testing.T) {
	svc, _, rec := newTestService(t, &fakeRenderer{out: pdftest.Document(1)})
	_, err := svc.Start(context.Background(), "staff-1", rec.ID)
	require.NoError(t, err)
	done := waitState(t, svc.Trackers().Get("staff-1"), StateFailed)
	assert.Equal(t, "Wait till image is loaded", done.Error)
}

func TestServiceReportsRenderFailure(t *testing.T) {
	r := &fakeRenderer{err: &render.RemoteError{Status: 502, Body: "bad gateway"}}
	svc, blobs, rec := newTestService(t, r)
	require.NoError(t, blobs.PutPhoto(context.Background(), rec.RollNo, []byte("jpeg"), ""))

	_, err := svc.Start(context.Background(), "staff-1", rec.ID)
	require.NoError(t, err)
	done := waitState(t, svc.Trackers().Get("staff-1"), StateFailed)
	assert.Equal(t, "API request failed with status 502: bad gateway", done.Error)
}

func TestServiceRejectsNonPDFOutput(t *testing.T) {
	r := &fakeRenderer{out: []byte("<html>oops</html>")}
	svc, blobs, rec := newTestService(t, r)
	require.NoError(t, blobs.PutPhoto(context.Background(), rec.RollNo, []byte("jpeg"), ""))

	_, err := svc.Start(context.Background(), "staff-1", rec.ID)
	require.NoError(t, err)
	done := waitState(t, svc.Trackers().Get("staff-1"), StateFailed)
	assert.Equal(t, "Error generating PDF. Please try again.", done.Error)
}

func TestServiceUnknownStudent(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeRenderer{})
	_, err := svc.Start(context.Background(), "staff-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, StateIdle, svc.Trackers().Get("staff-1").Snapshot().State)
}
