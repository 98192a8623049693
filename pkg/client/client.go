package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenCookieName is the cookie carrying the storefront's JWT.
const AccessTokenCookieName = "access_token"

// AuthCustomer is the authenticated customer extracted from the access
// token. SessionToken identifies the login session the authorize flow
// operates on.
type AuthCustomer struct {
	ID           uuid.UUID
	Email        string
	SessionToken string
}

// Claims are the JWT claims the storefront issues at login.
type Claims struct {
	Email        string `json:"email,omitempty"`
	SessionToken string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

type contextKey string

const authCustomerKey contextKey = "auth_customer"

// CustomerFromContext returns the AuthCustomer stored by Verifier.
func CustomerFromContext(ctx context.Context) (AuthCustomer, bool) {
	customer, ok := ctx.Value(authCustomerKey).(AuthCustomer)
	return customer, ok
}

// WithCustomer returns a context carrying the customer. Exposed for tests.
func WithCustomer(ctx context.Context, customer AuthCustomer) context.Context {
	return context.WithValue(ctx, authCustomerKey, customer)
}

// CreateToken signs an access token for the customer.
func CreateToken(secret []byte, customerID uuid.UUID, email, sessionToken string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email:        email,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates the access token and returns the customer.
func ParseToken(secret []byte, tokenString string) (AuthCustomer, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return AuthCustomer{}, err
	}
	if !token.Valid {
		return AuthCustomer{}, fmt.Errorf("invalid token")
	}

	customerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return AuthCustomer{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	return AuthCustomer{
		ID:           customerID,
		Email:        claims.Email,
		SessionToken: claims.SessionToken,
	}, nil
}

// Verifier is middleware that requires a valid access token cookie and
// stores the resulting AuthCustomer on the request context.
func Verifier(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookieName)
			if err != nil {
				unauthorized(w, r)
				return
			}

			customer, err := ParseToken(secret, cookie.Value)
			if err != nil {
				unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCustomer(r.Context(), customer)))
		})
	}
}

// OptionalVerifier stores the AuthCustomer when a valid access token
// cookie is present but lets the request through either way. Used on
// endpoints reachable from emailed links.
func OptionalVerifier(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(AccessTokenCookieName); err == nil {
				if customer, err := ParseToken(secret, cookie.Value); err == nil {
					r = r.WithContext(WithCustomer(r.Context(), customer))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{
		"error": "Please login to continue",
	})
}
