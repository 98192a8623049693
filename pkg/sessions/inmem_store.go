package sessions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quickcart/device-authz/pkg/tokengen"
)

// InMemSessionStore implements SessionStore using an in-memory map.
// Sessions are ephemeral by design, so there is no persistent variant.
type InMemSessionStore struct {
	sessions map[string]Session
	mu       sync.Mutex
	ttl      time.Duration
}

// NewInMemSessionStore creates a new in-memory session store with the default TTL
func NewInMemSessionStore() *InMemSessionStore {
	return NewInMemSessionStoreWithTTL(DefaultSessionTTL)
}

// NewInMemSessionStoreWithTTL creates a new in-memory session store with a custom TTL
func NewInMemSessionStoreWithTTL(ttl time.Duration) *InMemSessionStore {
	store := &InMemSessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}

	go store.sweep()

	return store
}

// CreateSession creates a new session for the customer
func (s *InMemSessionStore) CreateSession(ctx context.Context, customerID uuid.UUID) (Session, error) {
	token, err := tokengen.Generate(tokengen.TrustTokenLength)
	if err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	session := Session{
		Token:      token,
		CustomerID: customerID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	slog.Debug("Session created", "customerID", customerID)
	return session, nil
}

// GetSession retrieves a live session by token
func (s *InMemSessionStore) GetSession(ctx context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[token]
	if !exists || session.IsExpired() {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// SetCode replaces the pending one-time code for the session
func (s *InMemSessionStore) SetCode(ctx context.Context, token, code string) error {
	return s.update(token, func(session *Session) {
		session.Code = code
	})
}

// SetRedirect stores the captured return route for the session
func (s *InMemSessionStore) SetRedirect(ctx context.Context, token, redirect string) error {
	return s.update(token, func(session *Session) {
		session.Redirect = redirect
	})
}

// DeleteSession removes the session
func (s *InMemSessionStore) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[token]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, token)
	slog.Debug("Session deleted")
	return nil
}

func (s *InMemSessionStore) update(token string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[token]
	if !exists || session.IsExpired() {
		return ErrSessionNotFound
	}

	fn(&session)
	s.sessions[token] = session
	return nil
}

// sweep periodically removes expired sessions
func (s *InMemSessionStore) sweep() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for token, session := range s.sessions {
			if session.IsExpired() {
				delete(s.sessions, token)
			}
		}
		s.mu.Unlock()
	}
}
