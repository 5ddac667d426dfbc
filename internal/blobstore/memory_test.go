package blobstore

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/signing"
)

func openURL(t *testing.T, m *Memory, link string) (Object, error) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	key := strings.TrimPrefix(u.Path, BlobPath)
	return m.Open(key, u.Query().Get("expires"), u.Query().Get("signature"))
}

func TestMemoryPhotoRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(signing.NewSigner([]byte("s")), time.Minute)

	link, err := m.PhotoURL(ctx, "21CS001")
	require.NoError(t, err)
	assert.Empty(t, link, "no photo yet")
	_, err = m.GetPhoto(ctx, "21CS001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, m.PutPhoto(ctx, "21CS001", []byte("jpeg"), ""))
	data, err := m.GetPhoto(ctx, "21CS001")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	link, err = m.PhotoURL(ctx, "21CS001")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "/blobs/students/21CS001/photo.jpg?"))
	obj, err := openURL(t, m, link)
	require.NoError(t, err)
	assert.Equal(t, PhotoContentType, obj.ContentType)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = openURL(t, m, link)
	assert.ErrorIs(t, err, signing.ErrExpired)
}

func TestMemoryPurgeStudent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(signing.NewSigner([]byte("s")), time.Minute)
	require.NoError(t, m.PutPhoto(ctx, "21CS001", []byte("a"), "image/png"))
	require.NoError(t, m.PutDocument(ctx, DocumentKey("21CS001", "job1"), []byte("%PDF")))
	require.NoError(t, m.PutPhoto(ctx, "21CS0010", []byte("b"), ""))

	n, err := m.PurgeStudent(ctx, "21CS001")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = m.GetPhoto(ctx, "21CS0010")
	assert.NoError(t, err, "prefix match stops at the path separator")

	_, err = m.DocumentURL(ctx, DocumentKey("21CS001", "job1"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryMoveStudent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(signing.NewSigner([]byte("s")), time.Minute)
	require.NoError(t, m.PutPhoto(ctx, "21CS001", []byte("jpeg"), ""))
	require.NoError(t, m.PutDocument(ctx, DocumentKey("21CS001", "job"), []byte("%PDF-")))
	require.NoError(t, m.PutPhoto(ctx, "21CS0010", []byte("other"), ""))

	moved, err := m.MoveStudent(ctx, "21CS001", "21CS002")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	photo, err := m.GetPhoto(ctx, "21CS002")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(photo))
	_, err = m.DocumentURL(ctx, DocumentKey("21CS002", "job"))
	assert.NoError(t, err)
	_, err = m.GetPhoto(ctx, "21CS001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	photo, err = m.GetPhoto(ctx, "21CS0010")
	require.NoError(t, err)
	assert.Equal(t, "other", string(photo), "a roll number sharing the prefix is left alone")

	moved, err = m.MoveStudent(ctx, "21CS002", "21CS002")
	require.NoError(t, err)
	assert.Zero(t, moved)
}
