package ratelimit

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/quickcart/device-authz/pkg/client"
)

// Config holds rate limiting configuration. The verification endpoints
// are guessing targets, so they get much tighter per-IP budgets than
// ordinary traffic.
type Config struct {
	// Per-IP rate limiting
	PerIPEnabled    bool
	PerIPCapacity   int     // Max burst
	PerIPRefillRate float64 // Requests per second

	// Per-customer rate limiting (for authenticated requests)
	PerCustomerEnabled    bool
	PerCustomerCapacity   int
	PerCustomerRefillRate float64

	// Endpoint-specific limits, keyed "METHOD /path". The path is
	// matched against the full request path, so keys must carry any
	// prefix the router mounts the endpoints under.
	EndpointLimits map[string]EndpointLimit

	// How long to keep idle buckets in memory
	BucketTTL time.Duration
}

// EndpointLimit defines the rate limit for a specific endpoint.
type EndpointLimit struct {
	Capacity   int
	RefillRate float64
}

// DefaultConfig returns the default limits for the verification flow.
func DefaultConfig() *Config {
	return &Config{
		// Per-IP: 60 requests per minute
		PerIPEnabled:    true,
		PerIPCapacity:   60,
		PerIPRefillRate: 1.0,

		// Per-customer: 120 requests per minute
		PerCustomerEnabled:    true,
		PerCustomerCapacity:   120,
		PerCustomerRefillRate: 2.0,

		BucketTTL: time.Hour,

		// Code submission and email sending are the abuse targets
		EndpointLimits: map[string]EndpointLimit{
			"POST /account/authorize/save":    {Capacity: 10, RefillRate: 10.0 / 60.0},
			"POST /account/authorize/send":    {Capacity: 5, RefillRate: 5.0 / 60.0},
			"POST /account/authorize/confirm": {Capacity: 5, RefillRate: 5.0 / 60.0},
		},
	}
}

// Middleware holds the rate limiting middleware state.
type Middleware struct {
	config           *Config
	ipLimiter        *Limiter
	customerLimiter  *Limiter
	endpointLimiters map[string]*Limiter
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(config *Config) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}

	m := &Middleware{
		config:           config,
		endpointLimiters: make(map[string]*Limiter),
	}

	if config.PerIPEnabled {
		m.ipLimiter = NewLimiter(config.PerIPCapacity, config.PerIPRefillRate, config.BucketTTL)
	}

	if config.PerCustomerEnabled {
		m.customerLimiter = NewLimiter(config.PerCustomerCapacity, config.PerCustomerRefillRate, config.BucketTTL)
	}

	for endpoint, limit := range config.EndpointLimits {
		m.endpointLimiters[endpoint] = NewLimiter(limit.Capacity, limit.RefillRate, config.BucketTTL)
	}

	return m
}

// Handler applies the per-IP and endpoint limits. Install it at the
// server root, before routing.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if m.config.PerIPEnabled && ip != "" && !m.ipLimiter.Allow(ip) {
			m.rateLimitExceeded(w, r, "ip")
			return
		}

		endpointKey := r.Method + " " + r.URL.Path
		if limiter, exists := m.endpointLimiters[endpointKey]; exists {
			if !limiter.Allow(ip + ":" + endpointKey) {
				m.rateLimitExceeded(w, r, "endpoint")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// CustomerHandler applies the per-customer limit. It keys off the
// verified customer in the request context, so it must run after the
// authentication middleware; requests with no customer pass through.
func (m *Middleware) CustomerHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerID := customerIDFromRequest(r)
		if m.config.PerCustomerEnabled && customerID != "" && !m.customerLimiter.Allow(customerID) {
			m.rateLimitExceeded(w, r, "customer")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType string) {
	slog.Warn("Rate limit exceeded",
		"type", limitType,
		"ip", clientIP(r),
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Retry-After", "60")
	render.Status(r, http.StatusTooManyRequests)
	render.JSON(w, r, map[string]string{
		"error": "Too many requests. Please try again later.",
	})
}

// clientIP extracts the client IP address from the request
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// customerIDFromRequest keys the per-customer limiter off the verified
// access token, when present.
func customerIDFromRequest(r *http.Request) string {
	if customer, ok := client.CustomerFromContext(r.Context()); ok {
		return customer.ID.String()
	}
	return ""
}
