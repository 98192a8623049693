package sessions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/quickcart/device-authz/pkg/customer"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "device_authz_db.sql")),
		postgres.WithDatabase("device_authz_db"),
		postgres.WithUsername("device_authz"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestPostgresSessionStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	cust, err := customer.NewPostgresCustomerRepository(pool).CreateCustomer(ctx, customer.Customer{
		Email: "jane.doe@example.com",
		Name:  "Jane Doe",
	})
	require.NoError(t, err)

	store := NewPostgresSessionStore(pool)

	session, err := store.CreateSession(ctx, cust.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, cust.ID, session.CustomerID)
	assert.Empty(t, session.Code)

	require.NoError(t, store.SetCode(ctx, session.Token, "1234"))
	require.NoError(t, store.SetRedirect(ctx, session.Token, "https://shop.example.com/account/order"))

	got, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "1234", got.Code)
	assert.Equal(t, "https://shop.example.com/account/order", got.Redirect)

	_, err = store.GetSession(ctx, "unknown-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.DeleteSession(ctx, session.Token))
	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.DeleteSession(ctx, session.Token), ErrSessionNotFound)
}

func TestPostgresSessionStore_Expiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	cust, err := customer.NewPostgresCustomerRepository(pool).CreateCustomer(ctx, customer.Customer{
		Email: "expiry@example.com",
	})
	require.NoError(t, err)

	store := NewPostgresSessionStoreWithTTL(pool, 50*time.Millisecond)

	session, err := store.CreateSession(ctx, cust.ID)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, store.SetCode(ctx, session.Token, "1234"), ErrSessionNotFound)

	deleted, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
