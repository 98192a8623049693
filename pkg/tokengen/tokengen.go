package tokengen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// TrustTokenLength is the length of the opaque token stored in the
	// trust cookie to identify a device as safe.
	TrustTokenLength = 32

	// ResetCodeLength is the length of the single-use code emailed to a
	// customer to unlock their account.
	ResetCodeLength = 32

	// OneTimeCodeLength is the length of the short code emailed to the
	// customer on each authorize challenge.
	OneTimeCodeLength = 4
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits       = "0123456789"
)

// Generate returns a random alphanumeric string of the given length drawn
// from crypto/rand.
func Generate(length int) (string, error) {
	return generate(length, alphanumeric)
}

// GenerateNumeric returns a random digits-only string of the given length.
// Used for the emailed one-time code so it is easy to type from a phone.
func GenerateNumeric(length int) (string, error) {
	return generate(length, digits)
}

func generate(length int, charset string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid token length: %d", length)
	}

	max := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}
