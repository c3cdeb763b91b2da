package errors

import (
	stdErrors "errors"
	"net/http"
)

// Code is the stable machine-readable error identifier sent to clients.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit         Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

// Metadata controls how a code is rendered over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var catalog = func() map[Code]Metadata {
	entry := func(status int, public string) Metadata {
		return Metadata{HTTPStatus: status, PublicMessage: public}
	}
	withDetails := func(m Metadata) Metadata { m.DetailsAllowed = true; return m }
	retryable := func(m Metadata) Metadata { m.Retryable = true; return m }

	return map[Code]Metadata{
		CodeValidation:        withDetails(entry(http.StatusBadRequest, "validation failed")),
		CodeUnauthorized:      entry(http.StatusUnauthorized, "authentication required"),
		CodeForbidden:         entry(http.StatusForbidden, "access denied"),
		CodeNotFound:          entry(http.StatusNotFound, "resource not found"),
		CodeConflict:          entry(http.StatusConflict, "conflict detected"),
		CodeInsufficientStock: withDetails(entry(http.StatusBadRequest, "insufficient stock")),
		CodeIdempotency:       withDetails(entry(http.StatusConflict, "idempotency key reused")),
		CodeRateLimit:         entry(http.StatusTooManyRequests, "rate limit exceeded"),
		CodeInternal:          retryable(entry(http.StatusInternalServerError, "internal server error")),
		CodeDependency:        retryable(withDetails(entry(http.StatusServiceUnavailable, "dependency unavailable"))),
	}
}()

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := catalog[code]; ok {
		return meta
	}
	return catalog[CodeInternal]
}

// Error carries a Code, a client-safe message and optional details from
// the service layer to api/responses. The wrapped cause is only logged.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

// WithDetails attaches a payload rendered under error.details when the
// code allows it.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.code) + ": " + e.message
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the first *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func IsCode(err error, code Code) bool {
	return As(err).codeIs(code)
}

func (e *Error) codeIs(code Code) bool {
	return e != nil && e.code == code
}
