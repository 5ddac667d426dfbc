package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/signing"
)

// BlobPath is the route that serves signed memory blobs.
const BlobPath = "/blobs/"

// Object is a stored blob.
type Object struct {
	Data        []byte
	ContentType string
	ModTime     time.Time
}

// Memory stores blobs in process and hands out HMAC-signed links served by
// the API under BlobPath.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
	signer  *signing.Signer
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory constructs an empty Memory store.
func NewMemory(signer *signing.Signer, ttl time.Duration) *Memory {
	return &Memory{
		objects: make(map[string]Object),
		signer:  signer,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) put(key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		ModTime:     m.now().UTC(),
	}
}

func (m *Memory) get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

func (m *Memory) PutPhoto(_ context.Context, rollNo string, data []byte, contentType string) error {
	m.put(PhotoKey(rollNo), data, photoType(contentType))
	return nil
}

func (m *Memory) GetPhoto(_ context.Context, rollNo string) ([]byte, error) {
	obj, ok := m.get(PhotoKey(rollNo))
	if !ok {
		return nil, apperrors.NotFound("Photo not found")
	}
	return append([]byte(nil), obj.Data...), nil
}

func (m *Memory) PhotoURL(_ context.Context, rollNo string) (string, error) {
	key := PhotoKey(rollNo)
	if _, ok := m.get(key); !ok {
		return "", nil
	}
	return m.signedURL(key), nil
}

func (m *Memory) PutDocument(_ context.Context, key string, data []byte) error {
	m.put(key, data, "application/pdf")
	return nil
}

func (m *Memory) DocumentURL(_ context.Context, key string) (string, error) {
	if _, ok := m.get(key); !ok {
		return "", apperrors.NotFound("Document not found")
	}
	return m.signedURL(key), nil
}

func (m *Memory) PurgeStudent(_ context.Context, rollNo string) (int, error) {
	prefix := StudentPrefix(rollNo)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
			removed++
		}
	}
	return removed, nil
}

// MoveStudent re-keys every object of fromRollNo under toRollNo.
func (m *Memory) MoveStudent(_ context.Context, fromRollNo, toRollNo string) (int, error) {
	if fromRollNo == toRollNo {
		return 0, nil
	}
	from, to := StudentPrefix(fromRollNo), StudentPrefix(toRollNo)
	m.mu.Lock()
	defer m.mu.Unlock()
	moved := 0
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, from) {
			continue
		}
		delete(m.objects, key)
		m.objects[to+strings.TrimPrefix(key, from)] = obj
		moved++
	}
	return moved, nil
}

// Open returns the object behind a signed link.
func (m *Memory) Open(key, expires, signature string) (Object, error) {
	if err := m.signer.Check(key, expires, signature, m.now()); err != nil {
		return Object{}, fmt.Errorf("open %s: %w", key, err)
	}
	obj, ok := m.get(key)
	if !ok {
		return Object{}, apperrors.NotFound("Blob not found")
	}
	return obj, nil
}

func (m *Memory) signedURL(key string) string {
	exp := m.now().Add(m.ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(exp, 10))
	q.Set("signature", m.signer.Sign(key, exp))
	return BlobPath + key + "?" + q.Encode()
}
