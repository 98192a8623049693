package deviceauthz

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemAuthorizationRepository_CreateAndGet(t *testing.T) {
	repo := NewInMemAuthorizationRepository()
	ctx := context.Background()

	customerID := uuid.New()
	created, err := repo.Create(ctx, DeviceAuthorization{
		CustomerID: customerID,
		Token:      "trust-token",
		IP:         "203.0.113.7",
		UserAgent:  "test-agent",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.Status)
	assert.Zero(t, created.Attempts)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByToken(ctx, customerID, "trust-token")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByToken(ctx, customerID, "other-token")
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)

	// Token is scoped to the customer
	_, err = repo.GetByToken(ctx, uuid.New(), "trust-token")
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)

	_, err = repo.GetByToken(ctx, customerID, "")
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)
}

func TestInMemAuthorizationRepository_StatusAndAttempts(t *testing.T) {
	repo := NewInMemAuthorizationRepository()
	ctx := context.Background()

	customerID := uuid.New()
	created, err := repo.Create(ctx, DeviceAuthorization{CustomerID: customerID, Token: "tok"})
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, created.ID, true))

	n, err := repo.IncrementAttempts(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.SetAttempts(ctx, created.ID, 0))

	got, err := repo.GetByToken(ctx, customerID, "tok")
	require.NoError(t, err)
	assert.True(t, got.Status)
	assert.Zero(t, got.Attempts)

	assert.ErrorIs(t, repo.SetStatus(ctx, uuid.New(), true), ErrAuthorizationNotFound)
	assert.ErrorIs(t, repo.SetAttempts(ctx, uuid.New(), 1), ErrAuthorizationNotFound)
	_, err = repo.IncrementAttempts(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)
}

func TestInMemAuthorizationRepository_ConcurrentIncrement(t *testing.T) {
	repo := NewInMemAuthorizationRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, DeviceAuthorization{CustomerID: uuid.New(), Token: "tok"})
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = repo.IncrementAttempts(ctx, created.ID)
		}()
	}
	wg.Wait()

	got, err := repo.GetByToken(ctx, created.CustomerID, "tok")
	require.NoError(t, err)
	assert.Equal(t, workers, got.Attempts)
}

func TestInMemAuthorizationRepository_DeleteAllForCustomer(t *testing.T) {
	repo := NewInMemAuthorizationRepository()
	ctx := context.Background()

	customerID := uuid.New()
	otherID := uuid.New()

	_, err := repo.Create(ctx, DeviceAuthorization{CustomerID: customerID, Token: "tok-a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, DeviceAuthorization{CustomerID: customerID, Token: "tok-b"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, DeviceAuthorization{CustomerID: otherID, Token: "tok-c"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAllForCustomer(ctx, customerID))

	_, err = repo.GetByToken(ctx, customerID, "tok-a")
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)
	_, err = repo.GetByToken(ctx, customerID, "tok-b")
	assert.ErrorIs(t, err, ErrAuthorizationNotFound)

	// Other customers keep their devices
	_, err = repo.GetByToken(ctx, otherID, "tok-c")
	assert.NoError(t, err)
}
