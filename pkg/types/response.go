package types

// SuccessEnvelope wraps every 2xx body so clients always unwrap "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the error counterpart; a response carries either data
// or error, never both.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError carries the stable machine code plus a human message. Details
// is only populated for codes that allow exposing them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
