// Package auth signs staff in and out and verifies their sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
)

const missingCredentials = "Please fill in all fields"

// Staff is an account allowed to use the portal.
type Staff struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StaffStore looks accounts up by email.
type StaffStore interface {
	FindByEmail(ctx context.Context, email string) (Staff, error)
}

// Session is a verified sign-in.
type Session struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"-"`
	StaffID   string    `json:"staffId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// EventKind tells subscribers what happened.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is delivered to subscribers on every sign-in and sign-out.
type Event struct {
	Kind    EventKind
	StaffID string
	Email   string
}

// Claims is the JWT payload of a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Options configures token signing.
type Options struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Service issues and verifies session tokens.
type Service struct {
	staff    StaffStore
	denylist Denylist
	opts     Options
	now      func() time.Time

	mu        sync.RWMutex
	nextSub   int
	listeners map[int]func(Event)
}

// NewService constructs a Service.
func NewService(staff StaffStore, denylist Denylist, opts Options) *Service {
	return &Service{
		staff:     staff,
		denylist:  denylist,
		opts:      opts,
		now:       time.Now,
		listeners: make(map[int]func(Event)),
	}
}

// SignIn checks the credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperrors.Invalid(missingCredentials)
	}
	account, err := s.staff.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return Session{}, apperrors.New(apperrors.ErrInvalidCredentials, "Invalid email or password")
		}
		return Session{}, fmt.Errorf("find staff: %w", err)
	}
	if !CheckPassword(account.PasswordHash, password) {
		return Session{}, apperrors.New(apperrors.ErrInvalidCredentials, "Invalid email or password")
	}
	sess, err := s.issue(account)
	if err != nil {
		return Session{}, err
	}
	s.publish(Event{Kind: SignedIn, StaffID: account.ID, Email: account.Email})
	return sess, nil
}

func (s *Service) issue(account Staff) (Session, error) {
	now := s.now().UTC()
	claims := Claims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			Issuer:    s.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{
		Token:     token,
		TokenID:   claims.ID,
		StaffID:   account.ID,
		Email:     account.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify parses a token and rejects expired or revoked sessions.
func (s *Service) Verify(ctx context.Context, token string) (Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.opts.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Session{}, apperrors.New(apperrors.ErrUnauthenticated, "Session expired, please log in again")
	}
	revoked, err := s.denylist.Revoked(ctx, claims.ID)
	if err != nil {
		return Session{}, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return Session{}, apperrors.New(apperrors.ErrUnauthenticated, "Session expired, please log in again")
	}
	return Session{
		Token:     token,
		TokenID:   claims.ID,
		StaffID:   claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the session until its natural expiry and notifies
// subscribers so per-staff state can be torn down.
func (s *Service) SignOut(ctx context.Context, sess Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl > 0 {
		if err := s.denylist.Revoke(ctx, sess.TokenID, ttl); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	s.publish(Event{Kind: SignedOut, StaffID: sess.StaffID, Email: sess.Email})
	return nil
}

// Subscribe registers fn for session events. The returned func removes it.
func (s *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) publish(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
