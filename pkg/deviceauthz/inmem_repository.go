package deviceauthz

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemAuthorizationRepository implements AuthorizationRepository using
// an in-memory map
type InMemAuthorizationRepository struct {
	records map[uuid.UUID]DeviceAuthorization
	mu      sync.Mutex
}

// NewInMemAuthorizationRepository creates a new in-memory authorization repository
func NewInMemAuthorizationRepository() *InMemAuthorizationRepository {
	return &InMemAuthorizationRepository{
		records: make(map[uuid.UUID]DeviceAuthorization),
	}
}

// GetByToken retrieves the record matching a customer's trust token
func (r *InMemAuthorizationRepository) GetByToken(ctx context.Context, customerID uuid.UUID, token string) (DeviceAuthorization, error) {
	if token == "" {
		return DeviceAuthorization{}, ErrAuthorizationNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, auth := range r.records {
		if auth.CustomerID == customerID && auth.Token == token {
			return auth, nil
		}
	}
	return DeviceAuthorization{}, ErrAuthorizationNotFound
}

// Create stores a new pending device record
func (r *InMemAuthorizationRepository) Create(ctx context.Context, auth DeviceAuthorization) (DeviceAuthorization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auth.ID == uuid.Nil {
		auth.ID = uuid.New()
	}
	if auth.CreatedAt.IsZero() {
		auth.CreatedAt = time.Now().UTC()
	}

	r.records[auth.ID] = auth
	slog.Debug("Device authorization created", "customerID", auth.CustomerID, "authID", auth.ID)
	return auth, nil
}

// SetStatus updates the verification status of a record
func (r *InMemAuthorizationRepository) SetStatus(ctx context.Context, id uuid.UUID, status bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auth, exists := r.records[id]
	if !exists {
		return ErrAuthorizationNotFound
	}
	auth.Status = status
	r.records[id] = auth
	return nil
}

// SetAttempts overwrites the failed-attempt counter
func (r *InMemAuthorizationRepository) SetAttempts(ctx context.Context, id uuid.UUID, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auth, exists := r.records[id]
	if !exists {
		return ErrAuthorizationNotFound
	}
	auth.Attempts = attempts
	r.records[id] = auth
	return nil
}

// IncrementAttempts atomically adds one failed attempt and returns the new value
func (r *InMemAuthorizationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auth, exists := r.records[id]
	if !exists {
		return 0, ErrAuthorizationNotFound
	}
	auth.Attempts++
	r.records[id] = auth
	return auth.Attempts, nil
}

// DeleteAllForCustomer removes every device record for the customer
func (r *InMemAuthorizationRepository) DeleteAllForCustomer(ctx context.Context, customerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, auth := range r.records {
		if auth.CustomerID == customerID {
			delete(r.records, id)
		}
	}
	slog.Debug("Device authorizations deleted", "customerID", customerID)
	return nil
}
