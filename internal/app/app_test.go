package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/auth"
	"github.com/dharsanguruparan/HostelDesk/internal/blobstore"
	"github.com/dharsanguruparan/HostelDesk/internal/config"
	"github.com/dharsanguruparan/HostelDesk/internal/export"
	"github.com/dharsanguruparan/HostelDesk/internal/form"
	"github.com/dharsanguruparan/HostelDesk/internal/metrics"
	"github.com/dharsanguruparan/HostelDesk/internal/queue"
	"github.com/dharsanguruparan/HostelDesk/internal/signing"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Address:       ":0",
		Store:         config.StoreMemory,
		RenderURL:     "http://127.0.0.1:1/convert",
		RenderTimeout: time.Second,
		MaxPhotoBytes: 100 << 10,
		GatePolicy:    "strict",
		ProgressTick:  10 * time.Millisecond,
		ProgressStep:  10,
		ProgressCap:   90,
		JWTSecret:     "test-secret",
		JWTIssuer:     "hosteldesk",
		SessionTTL:    time.Hour,
		AdminEmail:    "warden@hostel.test",
		AdminPassword: "s3cret",
		SigningSecret: []byte("signing"),
		SignedURLTTL:  time.Minute,
	}
}

func newApp(t *testing.T) *App {
	t.Helper()
	a, err := New(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestBootstrapAdminCanSignIn(t *testing.T) {
	a := newApp(t)
	sess, err := a.Auth.SignIn(context.Background(), "warden@hostel.test", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "warden@hostel.test", sess.Email)

	staff, err := a.Staff.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, staff, 1)
}

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.bootstrapAdmin(context.Background()))

	staff, err := a.Staff.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, staff, 1)
}

func TestAddStaffRequiresCredentials(t *testing.T) {
	a := newApp(t)
	_, err := a.AddStaff(context.Background(), "", "pw")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSignOutDiscardsPerStaffState(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	sess, err := a.Auth.SignIn(ctx, "warden@hostel.test", "s3cret")
	require.NoError(t, err)

	a.Drafts.Open(sess.StaffID)
	tracker := a.Exports.Trackers().Get(sess.StaffID)
	_, err = tracker.Start(ctx, "student-1", func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	require.NoError(t, err)

	require.NoError(t, a.Auth.SignOut(ctx, sess))

	_, err = a.Drafts.Get(sess.StaffID)
	assert.ErrorIs(t, err, form.ErrNoDraft)

	job := tracker.Snapshot()
	assert.Equal(t, export.StateFailed, job.State)
	assert.Equal(t, "Export cancelled", job.Error)
	assert.NotSame(t, tracker, a.Exports.Trackers().Get(sess.StaffID))
}

func TestServerUsesMemoryBlobs(t *testing.T) {
	a := newApp(t)
	assert.NotNil(t, a.opener)
	assert.NotNil(t, a.Server().Handler())
}

func TestMemoryBlobsArePurgedInlineWithPostgresStore(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = config.StorePostgres
	cfg.RedisAddr = "127.0.0.1:6379"

	mem := blobstore.NewMemory(signing.NewSigner([]byte("k")), time.Minute)
	a := &App{Config: cfg, Log: zerolog.Nop(), Metrics: metrics.New(), Blobs: mem, opener: mem}
	defer a.Close()

	denylist, purge := a.sessionsAndPurge()
	assert.IsType(t, &auth.RedisDenylist{}, denylist)

	ctx := context.Background()
	require.NoError(t, mem.PutPhoto(ctx, "21CS001", []byte("jpeg"), ""))
	require.NoError(t, purge(ctx, queue.PurgePayload{StudentID: "id-1", RollNo: "21CS001"}))
	_, err := mem.GetPhoto(ctx, "21CS001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "purged in process, no worker involved")
}
