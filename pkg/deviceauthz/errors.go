package deviceauthz

import "errors"

var (
	// ErrAuthorizationNotFound is returned when no record matches the
	// presented trust token.
	ErrAuthorizationNotFound = errors.New("device authorization not found")

	// ErrCodeMismatch is returned when the submitted one-time code is
	// absent or does not match the session code.
	ErrCodeMismatch = errors.New("verification code does not match")

	// ErrDeviceLocked is returned when the attempt threshold has been
	// reached and verification is blocked until recovery.
	ErrDeviceLocked = errors.New("device verification locked")

	// ErrResetCodeMismatch is returned when the recovery link code is
	// absent or does not match the stored reset code.
	ErrResetCodeMismatch = errors.New("reset code does not match")
)
