package deviceauthz

import (
	"net/url"
	"strings"
)

// ResolveRedirect picks the post-verification destination. A supplied
// redirect wins only when it stays on baseURL's origin; otherwise the
// captured return route is used, and failing that the account page.
// Off-origin values are dropped silently rather than rejected, an open
// redirect must not become an enumeration oracle.
func ResolveRedirect(baseURL, supplied, captured string) string {
	if supplied != "" && strings.HasPrefix(supplied, baseURL) {
		return supplied
	}
	if captured != "" {
		return captured
	}
	return baseURL + "/account"
}

// AppendSessionToken adds the customer session token as the
// customer_token query parameter so the storefront can restore the
// session after the hop. Unparseable targets are returned untouched.
func AppendSessionToken(target, sessionToken string) string {
	if sessionToken == "" {
		return target
	}

	u, err := url.Parse(target)
	if err != nil {
		return target
	}

	q := u.Query()
	q.Set("customer_token", sessionToken)
	u.RawQuery = q.Encode()
	return u.String()
}

// CaptureRoute rebuilds the request's route and query into a relative
// return path, dropping the routing and session parameters that only
// belong to the current hop. The login and authorize pages are never
// captured: returning a verified customer there would loop them back
// into the flow.
func CaptureRoute(baseURL, route string, query url.Values) string {
	route = strings.TrimPrefix(route, "/")
	if route == "" || route == "account/login" || route == "account/authorize" {
		return ""
	}

	q := url.Values{}
	for key, values := range query {
		if key == "route" || key == "customer_token" {
			continue
		}
		for _, v := range values {
			q.Add(key, v)
		}
	}

	captured := baseURL + "/" + route
	if encoded := q.Encode(); encoded != "" {
		captured += "?" + encoded
	}
	return captured
}
