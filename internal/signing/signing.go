// Package signing generates and checks HMAC signatures for time-limited blob
// download links.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrExpired   = errors.New("link expired")
	ErrSignature = errors.New("invalid signature")
)

// Signer generates and validates HMAC based signatures.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the hex signature of key at the given expiry.
func (s *Signer) Sign(key string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, expiresUnix)
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate compares the provided signature with the expected one.
func (s *Signer) Validate(key, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	expected := s.Sign(key, exp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Check validates the signature and that the link has not expired at now.
func (s *Signer) Check(key, expires, signature string, now time.Time) error {
	if !s.Validate(key, expires, signature) {
		return ErrSignature
	}
	exp, _ := strconv.ParseInt(expires, 10, 64)
	if time.Unix(exp, 0).Before(now) {
		return ErrExpired
	}
	return nil
}
