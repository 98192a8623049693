package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemSessionStore_CreateAndGet(t *testing.T) {
	store := NewInMemSessionStore()
	ctx := context.Background()

	customerID := uuid.New()
	session, err := store.CreateSession(ctx, customerID)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, customerID, session.CustomerID)
	assert.Empty(t, session.Code)

	got, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)
	assert.Equal(t, customerID, got.CustomerID)

	_, err = store.GetSession(ctx, "unknown-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInMemSessionStore_SetCode(t *testing.T) {
	store := NewInMemSessionStore()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	err = store.SetCode(ctx, session.Token, "1234")
	require.NoError(t, err)

	got, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "1234", got.Code)

	// Code is replaced, not accumulated
	err = store.SetCode(ctx, session.Token, "5678")
	require.NoError(t, err)

	got, err = store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "5678", got.Code)

	err = store.SetCode(ctx, "unknown-token", "1234")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInMemSessionStore_SetRedirect(t *testing.T) {
	store := NewInMemSessionStore()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	err = store.SetRedirect(ctx, session.Token, "https://shop.example.com/account/order")
	require.NoError(t, err)

	got, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/account/order", got.Redirect)
}

func TestInMemSessionStore_DeleteSession(t *testing.T) {
	store := NewInMemSessionStore()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	err = store.DeleteSession(ctx, session.Token)
	require.NoError(t, err)

	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = store.DeleteSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInMemSessionStore_Expiry(t *testing.T) {
	store := NewInMemSessionStoreWithTTL(20 * time.Millisecond)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = store.SetCode(ctx, session.Token, "1234")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
