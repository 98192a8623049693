package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestCreateAndParseToken(t *testing.T) {
	customerID := uuid.New()

	tokenString, err := CreateToken(testSecret, customerID, "jane.doe@example.com", "session-token", time.Hour)
	require.NoError(t, err)

	customer, err := ParseToken(testSecret, tokenString)
	require.NoError(t, err)
	assert.Equal(t, customerID, customer.ID)
	assert.Equal(t, "jane.doe@example.com", customer.Email)
	assert.Equal(t, "session-token", customer.SessionToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tokenString, err := CreateToken(testSecret, uuid.New(), "a@b.com", "sid", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-secret"), tokenString)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tokenString, err := CreateToken(testSecret, uuid.New(), "a@b.com", "sid", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tokenString)
	assert.Error(t, err)
}

func TestParseToken_RejectsUnexpectedAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tokenString)
	assert.Error(t, err)
}

func TestVerifier(t *testing.T) {
	customerID := uuid.New()
	tokenString, err := CreateToken(testSecret, customerID, "jane.doe@example.com", "session-token", time.Hour)
	require.NoError(t, err)

	var got AuthCustomer
	handler := Verifier(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customer, ok := CustomerFromContext(r.Context())
		require.True(t, ok)
		got = customer
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: tokenString})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, customerID, got.ID)
		assert.Equal(t, "session-token", got.SessionToken)
	})

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: "garbage"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
