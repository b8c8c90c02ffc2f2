package types

// SuccessEnvelope wraps every successful API response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failed request: a stable machine
// code, a human-readable message, and optional structured details
// (e.g. the ingredient and quantities behind an insufficient-stock
// rejection).
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed API response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
