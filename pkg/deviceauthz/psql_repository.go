package deviceauthz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresAuthorizationRepository implements AuthorizationRepository using PostgreSQL
type PostgresAuthorizationRepository struct {
	db DBTX
}

// NewPostgresAuthorizationRepository creates a new PostgreSQL authorization repository
func NewPostgresAuthorizationRepository(db DBTX) *PostgresAuthorizationRepository {
	return &PostgresAuthorizationRepository{db: db}
}

// GetByToken retrieves the record matching a customer's trust token
func (r *PostgresAuthorizationRepository) GetByToken(ctx context.Context, customerID uuid.UUID, token string) (DeviceAuthorization, error) {
	if token == "" {
		return DeviceAuthorization{}, ErrAuthorizationNotFound
	}

	query := `
		SELECT id, customer_id, token, ip, user_agent, status, attempts, created_at
		FROM device_authorization
		WHERE customer_id = $1 AND token = $2
	`

	var auth DeviceAuthorization
	err := r.db.QueryRow(ctx, query, customerID, token).Scan(
		&auth.ID, &auth.CustomerID, &auth.Token, &auth.IP,
		&auth.UserAgent, &auth.Status, &auth.Attempts, &auth.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeviceAuthorization{}, ErrAuthorizationNotFound
		}
		return DeviceAuthorization{}, fmt.Errorf("failed to get device authorization: %w", err)
	}

	return auth, nil
}

// Create inserts a new pending device record
func (r *PostgresAuthorizationRepository) Create(ctx context.Context, auth DeviceAuthorization) (DeviceAuthorization, error) {
	if auth.ID == uuid.Nil {
		auth.ID = uuid.New()
	}

	query := `
		INSERT INTO device_authorization (id, customer_id, token, ip, user_agent, status, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, customer_id, token, ip, user_agent, status, attempts, created_at
	`

	row := r.db.QueryRow(ctx, query,
		auth.ID,
		auth.CustomerID,
		auth.Token,
		auth.IP,
		auth.UserAgent,
		auth.Status,
		auth.Attempts,
	)

	var created DeviceAuthorization
	err := row.Scan(
		&created.ID, &created.CustomerID, &created.Token, &created.IP,
		&created.UserAgent, &created.Status, &created.Attempts, &created.CreatedAt,
	)
	if err != nil {
		return DeviceAuthorization{}, fmt.Errorf("failed to create device authorization: %w", err)
	}

	return created, nil
}

// SetStatus updates the verification status of a record
func (r *PostgresAuthorizationRepository) SetStatus(ctx context.Context, id uuid.UUID, status bool) error {
	query := `
		UPDATE device_authorization
		SET status = $2
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAuthorizationNotFound
	}

	return nil
}

// SetAttempts overwrites the failed-attempt counter
func (r *PostgresAuthorizationRepository) SetAttempts(ctx context.Context, id uuid.UUID, attempts int) error {
	query := `
		UPDATE device_authorization
		SET attempts = $2
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, attempts)
	if err != nil {
		return fmt.Errorf("failed to set attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAuthorizationNotFound
	}

	return nil
}

// IncrementAttempts atomically adds one failed attempt and returns the
// new value. The increment happens in the database so concurrent
// verify requests cannot lose an update.
func (r *PostgresAuthorizationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE device_authorization
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int
	err := r.db.QueryRow(ctx, query, id).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAuthorizationNotFound
		}
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}

	return attempts, nil
}

// DeleteAllForCustomer removes every device record for the customer
func (r *PostgresAuthorizationRepository) DeleteAllForCustomer(ctx context.Context, customerID uuid.UUID) error {
	query := `
		DELETE FROM device_authorization
		WHERE customer_id = $1
	`

	_, err := r.db.Exec(ctx, query, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete device authorizations: %w", err)
	}

	return nil
}
