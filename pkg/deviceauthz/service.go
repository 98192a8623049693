package deviceauthz

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/quickcart/device-authz/pkg/customer"
	"github.com/quickcart/device-authz/pkg/notice"
	"github.com/quickcart/device-authz/pkg/notification"
	"github.com/quickcart/device-authz/pkg/sessions"
	"github.com/quickcart/device-authz/pkg/tokengen"
)

// AuthorizationService drives the trusted-device flow: issuing
// challenges, verifying one-time codes, and recovering locked devices.
type AuthorizationService struct {
	authzRepo           AuthorizationRepository
	customerRepo        customer.CustomerRepository
	sessionStore        sessions.SessionStore
	notificationManager *notification.NotificationManager
	baseURL             string
	trustTTLDays        int
	codeLength          int
}

// Option configures an AuthorizationService
type Option func(*AuthorizationService)

// WithTrustTTLDays overrides how many days a trust cookie lives
func WithTrustTTLDays(days int) Option {
	return func(s *AuthorizationService) {
		s.trustTTLDays = days
	}
}

// WithCodeLength overrides the one-time code length
func WithCodeLength(length int) Option {
	return func(s *AuthorizationService) {
		s.codeLength = length
	}
}

// NewAuthorizationService creates a new AuthorizationService. baseURL is
// the storefront origin, used both to build links in emails and to fence
// redirect targets.
func NewAuthorizationService(
	authzRepo AuthorizationRepository,
	customerRepo customer.CustomerRepository,
	sessionStore sessions.SessionStore,
	notificationManager *notification.NotificationManager,
	baseURL string,
	opts ...Option,
) *AuthorizationService {
	s := &AuthorizationService{
		authzRepo:           authzRepo,
		customerRepo:        customerRepo,
		sessionStore:        sessionStore,
		notificationManager: notificationManager,
		baseURL:             strings.TrimRight(baseURL, "/"),
		trustTTLDays:        DefaultTrustTTLDays,
		codeLength:          tokengen.OneTimeCodeLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrustTTLDays returns the configured trust cookie lifetime in days.
func (s *AuthorizationService) TrustTTLDays() int {
	return s.trustTTLDays
}

// BaseURL returns the storefront origin the service was built with.
func (s *AuthorizationService) BaseURL() string {
	return s.baseURL
}

// Challenge is the result of starting a verification round.
type Challenge struct {
	State State

	// TrustToken is the token the device must hold. NewDevice marks that
	// a record was just created and the caller must (re)set the cookie.
	TrustToken string
	NewDevice  bool

	// MaskedEmail is the obscured address the code was sent to, for
	// display only.
	MaskedEmail string
}

// StartChallenge begins a verification round for the session's customer
// and the device identified by trustToken. A device with no record gets
// a fresh pending record and a new token. Unless the device is locked or
// already authorized, a new one-time code replaces any previous one and
// is emailed to the customer. route and query, when present, are
// captured as the return destination for after verification.
func (s *AuthorizationService) StartChallenge(ctx context.Context, sessionToken, trustToken, ip, userAgent, route string, query url.Values) (Challenge, error) {
	session, err := s.sessionStore.GetSession(ctx, sessionToken)
	if err != nil {
		return Challenge{}, err
	}

	cust, err := s.customerRepo.GetCustomerByID(ctx, session.CustomerID)
	if err != nil {
		return Challenge{}, err
	}

	var challenge Challenge
	auth, err := s.authzRepo.GetByToken(ctx, session.CustomerID, trustToken)
	switch {
	case err == nil:
		challenge.TrustToken = auth.Token
	case err == ErrAuthorizationNotFound:
		auth, err = s.createRecord(ctx, session.CustomerID, ip, userAgent)
		if err != nil {
			return Challenge{}, err
		}
		challenge.TrustToken = auth.Token
		challenge.NewDevice = true
	default:
		return Challenge{}, err
	}

	challenge.State = StateOf(auth, true)
	challenge.MaskedEmail = maskEmail(cust.Email)

	if captured := CaptureRoute(s.baseURL, route, query); captured != "" {
		if redirectErr := s.sessionStore.SetRedirect(ctx, sessionToken, captured); redirectErr != nil {
			return Challenge{}, redirectErr
		}
	}

	if challenge.State == StatePending {
		if err := s.issueCode(ctx, sessionToken, cust); err != nil {
			return Challenge{}, err
		}
	}

	return challenge, nil
}

// Verify checks the submitted code against the session's pending code
// and applies the outcome. On success the device becomes trusted and the
// returned redirect carries the session token for the storefront hop.
// suppliedRedirect is honored only when it stays on the service origin.
func (s *AuthorizationService) Verify(ctx context.Context, sessionToken, trustToken, code, suppliedRedirect string) (string, error) {
	session, err := s.sessionStore.GetSession(ctx, sessionToken)
	if err != nil {
		return "", err
	}

	auth, err := s.authzRepo.GetByToken(ctx, session.CustomerID, trustToken)
	state := StateOf(auth, err == nil)
	if err != nil && err != ErrAuthorizationNotFound {
		return "", err
	}

	codeOK := session.Code != "" && code == session.Code
	decision := Evaluate(state, auth.Attempts, codeOK)

	if decision.IncrementAttempts {
		if _, incErr := s.authzRepo.IncrementAttempts(ctx, auth.ID); incErr != nil {
			return "", incErr
		}
	}

	switch decision.Outcome {
	case OutcomeLocked:
		slog.Info("Device verification locked", "customerID", session.CustomerID)
		return "", ErrDeviceLocked
	case OutcomeCodeRejected:
		return "", ErrCodeMismatch
	}

	if err := s.authzRepo.SetStatus(ctx, auth.ID, true); err != nil {
		return "", err
	}
	if err := s.authzRepo.SetAttempts(ctx, auth.ID, 0); err != nil {
		return "", err
	}

	slog.Info("Device authorized", "customerID", session.CustomerID)

	redirect := ResolveRedirect(s.baseURL, suppliedRedirect, session.Redirect)
	return AppendSessionToken(redirect, sessionToken), nil
}

// ResendCode re-rolls the session's one-time code and emails it again.
// It reports success to the caller regardless of delivery so repeated
// requests reveal nothing about the account; failures are logged.
func (s *AuthorizationService) ResendCode(ctx context.Context, sessionToken string) {
	session, err := s.sessionStore.GetSession(ctx, sessionToken)
	if err != nil {
		slog.Info("Resend for unknown session", "error", err)
		return
	}

	cust, err := s.customerRepo.GetCustomerByID(ctx, session.CustomerID)
	if err != nil {
		slog.Error("Resend customer lookup failed", "customerID", session.CustomerID, "error", err)
		return
	}

	if err := s.issueCode(ctx, sessionToken, cust); err != nil {
		slog.Error("Resend failed", "customerID", session.CustomerID, "error", err)
	}
}

// UnlockState reports the device's current state so callers can skip
// the recovery page for a device that is already authorized.
func (s *AuthorizationService) UnlockState(ctx context.Context, sessionToken, trustToken string) (State, error) {
	session, err := s.sessionStore.GetSession(ctx, sessionToken)
	if err != nil {
		return StateNoDevice, err
	}

	auth, err := s.authzRepo.GetByToken(ctx, session.CustomerID, trustToken)
	if err == ErrAuthorizationNotFound {
		return StateNoDevice, nil
	}
	if err != nil {
		return StateNoDevice, err
	}

	return StateOf(auth, true), nil
}

// ConfirmUnlock stores a fresh single-use reset code on the customer and
// emails the recovery link. Any previously issued link stops working.
func (s *AuthorizationService) ConfirmUnlock(ctx context.Context, sessionToken string) error {
	session, err := s.sessionStore.GetSession(ctx, sessionToken)
	if err != nil {
		return err
	}

	cust, err := s.customerRepo.GetCustomerByID(ctx, session.CustomerID)
	if err != nil {
		return err
	}

	resetCode, err := tokengen.Generate(tokengen.ResetCodeLength)
	if err != nil {
		return err
	}

	if err := s.customerRepo.SetResetCode(ctx, cust.Email, resetCode); err != nil {
		return err
	}

	unlockLink := fmt.Sprintf("%s/account/authorize/reset?email=%s&code=%s",
		s.baseURL, url.QueryEscape(cust.Email), url.QueryEscape(resetCode))

	err = s.notificationManager.Send(notice.AuthorizeUnlockNotice, notification.NotificationData{
		To: cust.Email,
		Data: map[string]string{
			"Name":       cust.Name,
			"UnlockLink": unlockLink,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send unlock email: %w", err)
	}

	slog.Info("Unlock email sent", "customerID", cust.ID)
	return nil
}

// Reset consumes the emailed recovery link. An exact code match wipes
// every trusted-device record for the customer so each device verifies
// again. Any mismatch burns the stored code and ends the current
// session: a guessed or stale link costs the login.
func (s *AuthorizationService) Reset(ctx context.Context, sessionToken, email, code string) error {
	cust, err := s.customerRepo.GetCustomerByEmail(ctx, email)
	if err == customer.ErrCustomerNotFound {
		s.failReset(ctx, sessionToken, "")
		return ErrResetCodeMismatch
	}
	if err != nil {
		return err
	}

	if cust.ResetCode == "" || code == "" || code != cust.ResetCode {
		s.failReset(ctx, sessionToken, cust.Email)
		return ErrResetCodeMismatch
	}

	if err := s.authzRepo.DeleteAllForCustomer(ctx, cust.ID); err != nil {
		return err
	}
	if err := s.customerRepo.SetResetCode(ctx, cust.Email, ""); err != nil {
		return err
	}

	slog.Info("Device authorizations reset", "customerID", cust.ID)
	return nil
}

func (s *AuthorizationService) failReset(ctx context.Context, sessionToken, email string) {
	if email != "" {
		if err := s.customerRepo.SetResetCode(ctx, email, ""); err != nil {
			slog.Error("Failed to clear reset code", "error", err)
		}
	}
	if err := s.sessionStore.DeleteSession(ctx, sessionToken); err != nil && err != sessions.ErrSessionNotFound {
		slog.Error("Failed to end session", "error", err)
	}
}

func (s *AuthorizationService) createRecord(ctx context.Context, customerID uuid.UUID, ip, userAgent string) (DeviceAuthorization, error) {
	token, err := tokengen.Generate(tokengen.TrustTokenLength)
	if err != nil {
		return DeviceAuthorization{}, err
	}

	return s.authzRepo.Create(ctx, DeviceAuthorization{
		CustomerID: customerID,
		Token:      token,
		IP:         ip,
		UserAgent:  userAgent,
	})
}

func (s *AuthorizationService) issueCode(ctx context.Context, sessionToken string, cust customer.Customer) error {
	code, err := tokengen.GenerateNumeric(s.codeLength)
	if err != nil {
		return err
	}

	if err := s.sessionStore.SetCode(ctx, sessionToken, code); err != nil {
		return err
	}

	err = s.notificationManager.Send(notice.AuthorizeCodeNotice, notification.NotificationData{
		To: cust.Email,
		Data: map[string]string{
			"Name": cust.Name,
			"Code": code,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}

	slog.Info("Verification code sent", "customerID", cust.ID)
	return nil
}

// maskEmail obscures the local part for display, keeping the first and
// last characters when long enough.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}

	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}
