package signing

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner(t *testing.T) {
	s := NewSigner([]byte("topsecret"))
	sig := s.Sign("students/21CS001/photo.jpg", 1700000000)
	require.NotEmpty(t, sig)

	assert.True(t, s.Validate("students/21CS001/photo.jpg", "1700000000", sig))
	assert.False(t, s.Validate("students/21CS002/photo.jpg", "1700000000", sig))
	assert.False(t, s.Validate("students/21CS001/photo.jpg", "42", sig))
	assert.False(t, s.Validate("students/21CS001/photo.jpg", "soon", sig))
	assert.False(t, NewSigner([]byte("other")).Validate("students/21CS001/photo.jpg", "1700000000", sig))
}

func TestCheck(t *testing.T) {
	s := NewSigner([]byte("topsecret"))
	now := time.Unix(1700000000, 0)
	exp := now.Add(time.Minute).Unix()
	expires := strconv.FormatInt(exp, 10)
	sig := s.Sign("k", exp)

	assert.NoError(t, s.Check("k", expires, sig, now))
	assert.ErrorIs(t, s.Check("k", expires, sig, now.Add(2*time.Minute)), ErrExpired)
	assert.ErrorIs(t, s.Check("k", expires, "00", now), ErrSignature)
}
