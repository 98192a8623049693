package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quickcart/device-authz/pkg/tokengen"
	"github.com/quickcart/device-authz/pkg/utils"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresSessionStore implements SessionStore using PostgreSQL, so
// sessions survive restarts and are shared across instances.
type PostgresSessionStore struct {
	db  DBTX
	ttl time.Duration
}

// NewPostgresSessionStore creates a new PostgreSQL session store with the default TTL
func NewPostgresSessionStore(db DBTX) *PostgresSessionStore {
	return NewPostgresSessionStoreWithTTL(db, DefaultSessionTTL)
}

// NewPostgresSessionStoreWithTTL creates a new PostgreSQL session store with a custom TTL
func NewPostgresSessionStoreWithTTL(db DBTX, ttl time.Duration) *PostgresSessionStore {
	return &PostgresSessionStore{db: db, ttl: ttl}
}

// CreateSession creates a new session for the customer
func (s *PostgresSessionStore) CreateSession(ctx context.Context, customerID uuid.UUID) (Session, error) {
	token, err := tokengen.Generate(tokengen.TrustTokenLength)
	if err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO customer_session (token, customer_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING token, customer_id, COALESCE(code, ''), COALESCE(redirect, ''), created_at, expires_at
	`

	var session Session
	err = s.db.QueryRow(ctx, query, token, customerID, now, now.Add(s.ttl)).Scan(
		&session.Token, &session.CustomerID, &session.Code, &session.Redirect,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a live session by token
func (s *PostgresSessionStore) GetSession(ctx context.Context, token string) (Session, error) {
	query := `
		SELECT token, customer_id, COALESCE(code, ''), COALESCE(redirect, ''), created_at, expires_at
		FROM customer_session
		WHERE token = $1 AND expires_at > NOW()
	`

	var session Session
	err := s.db.QueryRow(ctx, query, token).Scan(
		&session.Token, &session.CustomerID, &session.Code, &session.Redirect,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// SetCode replaces the pending one-time code for the session
func (s *PostgresSessionStore) SetCode(ctx context.Context, token, code string) error {
	return s.update(ctx, token, "code", code)
}

// SetRedirect stores the captured return route for the session
func (s *PostgresSessionStore) SetRedirect(ctx context.Context, token, redirect string) error {
	return s.update(ctx, token, "redirect", redirect)
}

func (s *PostgresSessionStore) update(ctx context.Context, token, column, value string) error {
	query := fmt.Sprintf(`
		UPDATE customer_session
		SET %s = $2
		WHERE token = $1 AND expires_at > NOW()
	`, column)

	tag, err := s.db.Exec(ctx, query, token, utils.ToNullString(value))
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes the session
func (s *PostgresSessionStore) DeleteSession(ctx context.Context, token string) error {
	query := `
		DELETE FROM customer_session
		WHERE token = $1
	`

	tag, err := s.db.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes sessions past their expiry. Run periodically by
// the composition root.
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM customer_session WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
