package deviceauthz

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testBaseURL = "https://shop.example.com"

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		name     string
		supplied string
		captured string
		want     string
	}{
		{
			name:     "on-origin supplied wins",
			supplied: "https://shop.example.com/checkout",
			captured: "https://shop.example.com/account/order",
			want:     "https://shop.example.com/checkout",
		},
		{
			name:     "off-origin supplied falls back to captured",
			supplied: "https://evil.example.net/phish",
			captured: "https://shop.example.com/account/order",
			want:     "https://shop.example.com/account/order",
		},
		{
			name:     "off-origin supplied with no captured falls back to account",
			supplied: "https://evil.example.net/phish",
			want:     "https://shop.example.com/account",
		},
		{
			name:     "scheme-relative trick is off-origin",
			supplied: "//evil.example.net/phish",
			want:     "https://shop.example.com/account",
		},
		{
			name:     "captured used when nothing supplied",
			captured: "https://shop.example.com/account/wishlist",
			want:     "https://shop.example.com/account/wishlist",
		},
		{
			name: "default when nothing known",
			want: "https://shop.example.com/account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRedirect(testBaseURL, tt.supplied, tt.captured)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppendSessionToken(t *testing.T) {
	got := AppendSessionToken("https://shop.example.com/account", "tok123")
	assert.Equal(t, "https://shop.example.com/account?customer_token=tok123", got)

	got = AppendSessionToken("https://shop.example.com/account?page=2", "tok123")
	assert.Contains(t, got, "page=2")
	assert.Contains(t, got, "customer_token=tok123")

	got = AppendSessionToken("https://shop.example.com/account", "")
	assert.Equal(t, "https://shop.example.com/account", got)
}

func TestCaptureRoute(t *testing.T) {
	query := url.Values{}
	query.Set("route", "account/order")
	query.Set("order_id", "42")
	query.Set("customer_token", "stale")

	got := CaptureRoute(testBaseURL, "account/order", query)
	assert.Equal(t, "https://shop.example.com/account/order?order_id=42", got)

	assert.Empty(t, CaptureRoute(testBaseURL, "", nil))

	got = CaptureRoute(testBaseURL, "/account/wishlist", url.Values{})
	assert.Equal(t, "https://shop.example.com/account/wishlist", got)
}

func TestCaptureRoute_SkipsFlowPages(t *testing.T) {
	// Capturing these would bounce a verified customer straight back
	// into the login or verification flow
	assert.Empty(t, CaptureRoute(testBaseURL, "account/login", url.Values{}))
	assert.Empty(t, CaptureRoute(testBaseURL, "account/authorize", url.Values{}))
	assert.Empty(t, CaptureRoute(testBaseURL, "/account/login", url.Values{}))

	// Deeper account routes are still captured
	got := CaptureRoute(testBaseURL, "account/order", url.Values{})
	assert.Equal(t, "https://shop.example.com/account/order", got)
}
