package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Customer is the slice of the customer record this service needs:
// identity, the email used as the recovery side channel, and the
// pending authorize reset code (empty means no recovery is active).
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ResetCode string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrCustomerNotFound is returned when no customer matches the lookup.
	ErrCustomerNotFound = errors.New("customer not found")
)

// CustomerRepository defines the interface for customer storage operations
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer Customer) (Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (Customer, error)

	// SetResetCode sets the customer's authorize reset code. An empty
	// code clears it and disables the reset path.
	SetResetCode(ctx context.Context, email, code string) error
}
