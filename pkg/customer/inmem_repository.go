package customer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemCustomerRepository implements CustomerRepository using an in-memory map
type InMemCustomerRepository struct {
	customers map[uuid.UUID]Customer
	byEmail   map[string]uuid.UUID
	mu        sync.Mutex
}

// NewInMemCustomerRepository creates a new in-memory customer repository
func NewInMemCustomerRepository() *InMemCustomerRepository {
	return &InMemCustomerRepository{
		customers: make(map[uuid.UUID]Customer),
		byEmail:   make(map[string]uuid.UUID),
	}
}

// CreateCustomer stores a new customer record
func (r *InMemCustomerRepository) CreateCustomer(ctx context.Context, customer Customer) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	r.customers[customer.ID] = customer
	r.byEmail[customer.Email] = customer.ID
	slog.Debug("Customer created", "customerID", customer.ID)
	return customer, nil
}

// GetCustomerByEmail retrieves a customer by email
func (r *InMemCustomerRepository) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byEmail[email]
	if !exists {
		return Customer{}, ErrCustomerNotFound
	}
	return r.customers[id], nil
}

// GetCustomerByID retrieves a customer by ID
func (r *InMemCustomerRepository) GetCustomerByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, exists := r.customers[id]
	if !exists {
		return Customer{}, ErrCustomerNotFound
	}
	return customer, nil
}

// SetResetCode sets or clears the customer's authorize reset code
func (r *InMemCustomerRepository) SetResetCode(ctx context.Context, email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byEmail[email]
	if !exists {
		return ErrCustomerNotFound
	}

	customer := r.customers[id]
	customer.ResetCode = code
	r.customers[id] = customer
	slog.Debug("Reset code updated", "customerID", id, "cleared", code == "")
	return nil
}
