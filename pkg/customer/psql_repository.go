package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quickcart/device-authz/pkg/utils"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL
type PostgresCustomerRepository struct {
	db DBTX
}

// NewPostgresCustomerRepository creates a new PostgreSQL customer repository
func NewPostgresCustomerRepository(db DBTX) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// CreateCustomer creates a new customer in the database
func (r *PostgresCustomerRepository) CreateCustomer(ctx context.Context, customer Customer) (Customer, error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}

	query := `
		INSERT INTO customer (id, email, name, reset_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, COALESCE(reset_code, ''), created_at
	`

	row := r.db.QueryRow(ctx, query,
		customer.ID,
		customer.Email,
		customer.Name,
		utils.ToNullString(customer.ResetCode),
	)

	var created Customer
	err := row.Scan(&created.ID, &created.Email, &created.Name, &created.ResetCode, &created.CreatedAt)
	if err != nil {
		return Customer{}, fmt.Errorf("failed to create customer: %w", err)
	}

	return created, nil
}

// GetCustomerByEmail retrieves a customer by email
func (r *PostgresCustomerRepository) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	query := `
		SELECT id, email, name, COALESCE(reset_code, ''), created_at
		FROM customer
		WHERE email = $1
	`

	var customer Customer
	err := r.db.QueryRow(ctx, query, email).Scan(
		&customer.ID, &customer.Email, &customer.Name, &customer.ResetCode, &customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrCustomerNotFound
		}
		return Customer{}, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return customer, nil
}

// GetCustomerByID retrieves a customer by ID
func (r *PostgresCustomerRepository) GetCustomerByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	query := `
		SELECT id, email, name, COALESCE(reset_code, ''), created_at
		FROM customer
		WHERE id = $1
	`

	var customer Customer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&customer.ID, &customer.Email, &customer.Name, &customer.ResetCode, &customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrCustomerNotFound
		}
		return Customer{}, fmt.Errorf("failed to get customer by id: %w", err)
	}

	return customer, nil
}

// SetResetCode sets or clears the customer's authorize reset code
func (r *PostgresCustomerRepository) SetResetCode(ctx context.Context, email, code string) error {
	query := `
		UPDATE customer
		SET reset_code = $2
		WHERE email = $1
	`

	tag, err := r.db.Exec(ctx, query, email, utils.ToNullString(code))
	if err != nil {
		return fmt.Errorf("failed to set reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}

	return nil
}
