package types

// Envelope wraps every successful response body as {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorBody is the public shape of a failed request. Details is only set for
// codes that allow it (validation, insufficient stock, idempotency).
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
