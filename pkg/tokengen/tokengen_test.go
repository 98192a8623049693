package tokengen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Length(t *testing.T) {
	for _, length := range []int{TrustTokenLength, ResetCodeLength, OneTimeCodeLength, 1} {
		token, err := Generate(length)
		require.NoError(t, err)
		assert.Len(t, token, length)
	}
}

func TestGenerate_Charset(t *testing.T) {
	token, err := Generate(256)
	require.NoError(t, err)
	for _, r := range token {
		assert.Contains(t, alphanumeric, string(r))
	}
}

func TestGenerate_InvalidLength(t *testing.T) {
	_, err := Generate(0)
	assert.Error(t, err)

	_, err = Generate(-1)
	assert.Error(t, err)
}

func TestGenerate_Uniqueness(t *testing.T) {
	// A weak or seeded generator would collide almost immediately on
	// 32-char tokens. crypto/rand never should.
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := Generate(TrustTokenLength)
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated: %s", token)
		seen[token] = true
	}
}

func TestGenerateNumeric_DigitsOnly(t *testing.T) {
	code, err := GenerateNumeric(OneTimeCodeLength)
	require.NoError(t, err)
	assert.Len(t, code, OneTimeCodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(digits, r), "non-digit in code: %q", r)
	}
}

func TestGenerateNumeric_CoversAllDigits(t *testing.T) {
	// Over 200 four-digit draws every digit should appear; a biased
	// source (e.g. math/rand with fixed seed) tends to fail this.
	seen := make(map[rune]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateNumeric(OneTimeCodeLength)
		require.NoError(t, err)
		for _, r := range code {
			seen[r] = true
		}
	}
	assert.Len(t, seen, 10)
}
