package config

import "time"

// AuthorizeConfig holds settings for the trusted-device flow.
type AuthorizeConfig struct {
	// BaseURL is the storefront origin. Redirect targets outside it are
	// rejected and email links are built on it.
	BaseURL string `env:"AUTHZ_BASE_URL" env-default:"http://localhost:3000"`

	// TrustTTLDays is how long the trust cookie marks a device as safe.
	TrustTTLDays int `env:"AUTHZ_TRUST_TTL_DAYS" env-default:"90"`

	// CodeLength is the length of the emailed one-time code.
	CodeLength int `env:"AUTHZ_CODE_LENGTH" env-default:"4"`

	// SessionSecret signs the access token cookie.
	SessionSecret string `env:"AUTHZ_SESSION_SECRET" env-default:"dev-secret-change-me"`

	// SessionTTLMinutes bounds login sessions and pending codes.
	SessionTTLMinutes int `env:"AUTHZ_SESSION_TTL_MINUTES" env-default:"30"`

	// CookieSecure marks the trust and access cookies Secure.
	CookieSecure bool `env:"AUTHZ_COOKIE_SECURE" env-default:"false"`
}

// SessionTTL returns the session lifetime as a duration.
func (a AuthorizeConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}
