package api

// ChallengeResponse describes the verification round started by GET /.
type ChallengeResponse struct {
	State       string `json:"state"`
	MaskedEmail string `json:"email,omitempty"`
	Redirect    string `json:"redirect,omitempty"`
}

// VerifyRequest is the body of POST /save.
type VerifyRequest struct {
	Code     string `json:"code"`
	Redirect string `json:"redirect,omitempty"`
}

// SuccessResponse carries a human-readable confirmation.
type SuccessResponse struct {
	Success  string `json:"success,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// ErrorResponse carries an error message and, when the flow must move
// elsewhere, the page to go to.
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// UnlockResponse describes the state of the recovery page.
type UnlockResponse struct {
	State    string `json:"state"`
	Redirect string `json:"redirect,omitempty"`
}
