package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the per-login context consumed by the authorize flow. The
// pending one-time code and the captured return route live here and
// nowhere else; they disappear with the session.
type Session struct {
	Token      string    `json:"token"`
	CustomerID uuid.UUID `json:"customer_id"`
	Code       string    `json:"-"`
	Redirect   string    `json:"redirect"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

var (
	// ErrSessionNotFound is returned when no live session matches the token.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore defines the interface for session storage operations
type SessionStore interface {
	CreateSession(ctx context.Context, customerID uuid.UUID) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)

	// SetCode replaces the pending one-time code for the session.
	SetCode(ctx context.Context, token, code string) error

	// SetRedirect stores the captured return route for the session.
	SetRedirect(ctx context.Context, token, redirect string) error

	// DeleteSession removes the session, logging the customer out.
	DeleteSession(ctx context.Context, token string) error
}

const (
	// DefaultSessionTTL bounds how long a login session, and with it the
	// pending one-time code, stays valid.
	DefaultSessionTTL = 30 * time.Minute
)
