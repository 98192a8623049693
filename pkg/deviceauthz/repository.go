package deviceauthz

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DeviceAuthorization is one trusted-device record: a customer paired
// with the opaque token held in that device's trust cookie. Status
// false means the device still has to prove the emailed code; true
// means it is fully authorized. IP and user agent are captured at
// issuance for auditing only.
type DeviceAuthorization struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Token      string    `json:"token"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	Status     bool      `json:"status"`
	Attempts   int       `json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuthorizationRepository defines the interface for trusted-device storage operations
type AuthorizationRepository interface {
	// GetByToken looks up the record for a customer's trust token. An
	// empty or unmatched token returns ErrAuthorizationNotFound, which
	// callers must treat as "device not yet trusted".
	GetByToken(ctx context.Context, customerID uuid.UUID, token string) (DeviceAuthorization, error)

	// Create inserts a new pending record (status false, attempts 0).
	Create(ctx context.Context, auth DeviceAuthorization) (DeviceAuthorization, error)

	// SetStatus updates the verification status. Idempotent.
	SetStatus(ctx context.Context, id uuid.UUID, status bool) error

	// SetAttempts overwrites the failed-attempt counter. Idempotent;
	// used to reset the counter on successful verification.
	SetAttempts(ctx context.Context, id uuid.UUID, attempts int) error

	// IncrementAttempts atomically adds one failed attempt and returns
	// the new value. Concurrent verify requests must never under-count,
	// the lockout invariant depends on it.
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)

	// DeleteAllForCustomer removes every trusted-device record for the
	// customer, forcing re-verification on all devices.
	DeleteAllForCustomer(ctx context.Context, customerID uuid.UUID) error
}

const (
	// DefaultTrustTTLDays is how long the trust cookie marks a device
	// as safe.
	DefaultTrustTTLDays = 90
)

// TrustExpiry returns the trust cookie expiry, days in the future from now.
func TrustExpiry(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}
