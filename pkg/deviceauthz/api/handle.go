package api

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/quickcart/device-authz/pkg/client"
	"github.com/quickcart/device-authz/pkg/customer"
	"github.com/quickcart/device-authz/pkg/deviceauthz"
	"github.com/quickcart/device-authz/pkg/sessions"
	"github.com/quickcart/device-authz/pkg/tokengen"
)

// Handle serves the trusted-device verification endpoints.
type Handle struct {
	authzService *deviceauthz.AuthorizationService
	cookieSetter tokengen.CookieSetter
}

// NewHandle creates a new Handle
func NewHandle(authzService *deviceauthz.AuthorizationService, cookieSetter tokengen.CookieSetter) Handle {
	return Handle{
		authzService: authzService,
		cookieSetter: cookieSetter,
	}
}

// Routes builds the router for the verification flow. Everything except
// the emailed reset link requires a logged-in customer. authed
// middlewares run after the verifier, so they see the authenticated
// customer in the request context.
func Routes(handle Handle, secret []byte, authed ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(client.Verifier(secret))
		r.Use(authed...)
		r.Get("/", handle.GetAuthorize)
		r.Post("/save", handle.PostSave)
		r.Post("/send", handle.PostSend)
		r.Get("/unlock", handle.GetUnlock)
		r.Post("/confirm", handle.PostConfirm)
	})

	// The reset link arrives by email and may be opened logged out; a
	// live session is still picked up so a failed reset can end it
	r.Group(func(r chi.Router) {
		r.Use(client.OptionalVerifier(secret))
		r.Use(authed...)
		r.Get("/reset", handle.GetReset)
	})

	return r
}

// GetAuthorize starts a verification round: it creates the device
// record if needed, sets the trust cookie, and emails a fresh code.
func (h Handle) GetAuthorize(w http.ResponseWriter, r *http.Request) {
	authCustomer, ok := client.CustomerFromContext(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	challenge, err := h.authzService.StartChallenge(
		r.Context(),
		authCustomer.SessionToken,
		trustTokenFromRequest(r),
		ipAddressFromRequest(r),
		r.UserAgent(),
		r.URL.Query().Get("route"),
		r.URL.Query(),
	)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	if challenge.NewDevice {
		expire := deviceauthz.TrustExpiry(h.authzService.TrustTTLDays())
		if err := h.cookieSetter.SetCookie(w, tokengen.TrustCookieName, challenge.TrustToken, expire); err != nil {
			slog.Error("Failed to set trust cookie", "error", err)
		}
	}

	var resp ChallengeResponse
	if err := copier.Copy(&resp, &challenge); err != nil {
		slog.Error("Failed to map challenge response", "error", err)
	}
	resp.State = challenge.State.String()

	switch challenge.State {
	case deviceauthz.StateLocked:
		resp.Redirect = h.authzService.BaseURL() + "/account/authorize/unlock"
	case deviceauthz.StateAuthorized:
		resp.Redirect = h.authzService.BaseURL() + "/account"
	}

	render.JSON(w, r, resp)
}

// PostSave verifies the submitted code.
func (h Handle) PostSave(w http.ResponseWriter, r *http.Request) {
	authCustomer, ok := client.CustomerFromContext(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	data := VerifyRequest{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Unable to parse request body"})
		return
	}

	redirect, err := h.authzService.Verify(
		r.Context(),
		authCustomer.SessionToken,
		trustTokenFromRequest(r),
		strings.TrimSpace(data.Code),
		data.Redirect,
	)
	if err != nil {
		switch {
		case errors.Is(err, deviceauthz.ErrDeviceLocked):
			render.Status(r, http.StatusLocked)
			render.JSON(w, r, ErrorResponse{
				Error:    "You have exceeded allowed attempts of verifying your device!",
				Redirect: h.authzService.BaseURL() + "/account/authorize/unlock",
			})
		case errors.Is(err, deviceauthz.ErrCodeMismatch):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "Verification code does not match!"})
		default:
			h.renderServiceError(w, r, err)
		}
		return
	}

	render.JSON(w, r, SuccessResponse{Redirect: redirect})
}

// PostSend re-sends the one-time code. The response never discloses
// whether delivery happened.
func (h Handle) PostSend(w http.ResponseWriter, r *http.Request) {
	authCustomer, ok := client.CustomerFromContext(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	h.authzService.ResendCode(r.Context(), authCustomer.SessionToken)

	render.JSON(w, r, SuccessResponse{Success: "Verification code has been sent!"})
}

// GetUnlock reports whether the recovery page applies to this device.
func (h Handle) GetUnlock(w http.ResponseWriter, r *http.Request) {
	authCustomer, ok := client.CustomerFromContext(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	state, err := h.authzService.UnlockState(r.Context(), authCustomer.SessionToken, trustTokenFromRequest(r))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	resp := UnlockResponse{State: state.String()}
	if state == deviceauthz.StateAuthorized {
		resp.Redirect = h.authzService.BaseURL() + "/account"
	}

	render.JSON(w, r, resp)
}

// PostConfirm emails the recovery link.
func (h Handle) PostConfirm(w http.ResponseWriter, r *http.Request) {
	authCustomer, ok := client.CustomerFromContext(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	if err := h.authzService.ConfirmUnlock(r.Context(), authCustomer.SessionToken); err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, SuccessResponse{Success: "An email with instructions to unlock your device has been sent!"})
}

// GetReset consumes the emailed recovery link and sends the browser
// back into the flow.
func (h Handle) GetReset(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	code := r.URL.Query().Get("code")
	sessionToken := sessionTokenFromRequest(r)

	err := h.authzService.Reset(r.Context(), sessionToken, email, code)
	if err != nil {
		if errors.Is(err, deviceauthz.ErrResetCodeMismatch) {
			http.Redirect(w, r, h.authzService.BaseURL()+"/account/login", http.StatusFound)
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, h.authzService.BaseURL()+"/account/authorize", http.StatusFound)
}

func (h Handle) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sessions.ErrSessionNotFound):
		renderUnauthorized(w, r)
	case errors.Is(err, customer.ErrCustomerNotFound):
		renderUnauthorized(w, r)
	default:
		slog.Error("Device authorization request failed", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Something went wrong, please try again later"})
	}
}

func renderUnauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, ErrorResponse{Error: "Please login to continue"})
}

func trustTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(tokengen.TrustCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// sessionTokenFromRequest recovers the session for the reset link. The
// link is usable logged out, so a missing or invalid token is fine.
func sessionTokenFromRequest(r *http.Request) string {
	if authCustomer, ok := client.CustomerFromContext(r.Context()); ok {
		return authCustomer.SessionToken
	}
	return ""
}

func ipAddressFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
