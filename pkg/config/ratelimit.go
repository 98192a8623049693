package config

// RateLimitConfig contains rate limiting settings for the verification
// flow. Fields have no env tags - populate manually or use
// NewRateLimitConfigFromEnv() for standard env var names.
type RateLimitConfig struct {
	// Per-IP rate limiting
	PerIPEnabled    bool
	PerIPCapacity   int
	PerIPRefillRate float64 // tokens per second

	// Per-customer rate limiting (for authenticated requests)
	PerCustomerEnabled    bool
	PerCustomerCapacity   int
	PerCustomerRefillRate float64 // tokens per second

	// Code submission limits (to prevent brute force)
	SaveEnabled    bool
	SaveCapacity   int
	SaveRefillRate float64 // tokens per second

	// Code resend limits
	SendEnabled    bool
	SendCapacity   int
	SendRefillRate float64 // tokens per second

	// Unlock-email limits
	ConfirmEnabled    bool
	ConfirmCapacity   int
	ConfirmRefillRate float64 // tokens per second
}

// NewRateLimitConfigFromEnv loads RateLimitConfig from standard
// environment variables. This is an optional convenience function - you
// can also populate the struct manually.
//
// Environment variables:
//   - RATELIMIT_PER_IP_ENABLED: Enable per-IP rate limiting (default: true)
//   - RATELIMIT_PER_IP_CAPACITY: Per-IP bucket capacity (default: 60)
//   - RATELIMIT_PER_IP_REFILL_RATE: Per-IP refill rate in tokens/sec (default: 1.0)
//   - RATELIMIT_PER_CUSTOMER_ENABLED: Enable per-customer rate limiting (default: true)
//   - RATELIMIT_PER_CUSTOMER_CAPACITY: Per-customer bucket capacity (default: 120)
//   - RATELIMIT_PER_CUSTOMER_REFILL_RATE: Per-customer refill rate in tokens/sec (default: 2.0)
//   - RATELIMIT_SAVE_ENABLED: Enable code submission rate limiting (default: true)
//   - RATELIMIT_SAVE_CAPACITY: Code submission bucket capacity (default: 10)
//   - RATELIMIT_SAVE_REFILL_RATE: Code submission refill rate in tokens/sec (default: 0.167)
//   - RATELIMIT_SEND_ENABLED: Enable code resend rate limiting (default: true)
//   - RATELIMIT_SEND_CAPACITY: Code resend bucket capacity (default: 5)
//   - RATELIMIT_SEND_REFILL_RATE: Code resend refill rate in tokens/sec (default: 0.083)
//   - RATELIMIT_CONFIRM_ENABLED: Enable unlock-email rate limiting (default: true)
//   - RATELIMIT_CONFIRM_CAPACITY: Unlock-email bucket capacity (default: 5)
//   - RATELIMIT_CONFIRM_REFILL_RATE: Unlock-email refill rate in tokens/sec (default: 0.083)
func NewRateLimitConfigFromEnv() RateLimitConfig {
	return RateLimitConfig{
		PerIPEnabled:          GetEnvBool("RATELIMIT_PER_IP_ENABLED", true),
		PerIPCapacity:         GetEnvInt("RATELIMIT_PER_IP_CAPACITY", 60),
		PerIPRefillRate:       GetEnvFloat64("RATELIMIT_PER_IP_REFILL_RATE", 1.0),
		PerCustomerEnabled:    GetEnvBool("RATELIMIT_PER_CUSTOMER_ENABLED", true),
		PerCustomerCapacity:   GetEnvInt("RATELIMIT_PER_CUSTOMER_CAPACITY", 120),
		PerCustomerRefillRate: GetEnvFloat64("RATELIMIT_PER_CUSTOMER_REFILL_RATE", 2.0),
		SaveEnabled:           GetEnvBool("RATELIMIT_SAVE_ENABLED", true),
		SaveCapacity:          GetEnvInt("RATELIMIT_SAVE_CAPACITY", 10),
		SaveRefillRate:        GetEnvFloat64("RATELIMIT_SAVE_REFILL_RATE", 0.167),
		SendEnabled:           GetEnvBool("RATELIMIT_SEND_ENABLED", true),
		SendCapacity:          GetEnvInt("RATELIMIT_SEND_CAPACITY", 5),
		SendRefillRate:        GetEnvFloat64("RATELIMIT_SEND_REFILL_RATE", 0.083),
		ConfirmEnabled:        GetEnvBool("RATELIMIT_CONFIRM_ENABLED", true),
		ConfirmCapacity:       GetEnvInt("RATELIMIT_CONFIRM_CAPACITY", 5),
		ConfirmRefillRate:     GetEnvFloat64("RATELIMIT_CONFIRM_REFILL_RATE", 0.083),
	}
}
