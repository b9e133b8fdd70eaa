package quercle

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure this package can surface. Errors are
// never retried or swallowed internally; callers branch on the code.
type ErrorCode string

const (
	ErrConfiguration  ErrorCode = "QUERCLE_CONFIGURATION"   // missing or invalid credential
	ErrValidation     ErrorCode = "QUERCLE_VALIDATION"      // malformed or missing request parameter
	ErrTransport      ErrorCode = "QUERCLE_TRANSPORT"       // network failure or timeout
	ErrAPI            ErrorCode = "QUERCLE_API"             // remote endpoint returned a non-success status
	ErrResponseFormat ErrorCode = "QUERCLE_RESPONSE_FORMAT" // success body could not be decoded
	ErrUnknownTool    ErrorCode = "QUERCLE_UNKNOWN_TOOL"    // registry asked for a non-canonical tool name
	ErrRateLimit      ErrorCode = "QUERCLE_RATE_LIMIT"      // client-side tool rate limit exceeded
)

// Error is the single error type returned by this module.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Op         string    `json:"op,omitempty"`          // operation name, e.g. "raw_search"
	HTTPStatus int       `json:"http_status,omitempty"` // set for ErrAPI
	Body       string    `json:"body,omitempty"`        // raw response body for ErrAPI
	cause      error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("quercle %s: %s", e.Op, e.Message)
	}
	return "quercle: " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// AsError unwraps err into *Error if it is one.
func AsError(err error) (*Error, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// HasCode reports whether err is a *Error carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	qe, ok := AsError(err)
	return ok && qe.Code == code
}

func configurationError(format string, args ...any) *Error {
	return &Error{Code: ErrConfiguration, Message: fmt.Sprintf(format, args...)}
}

func validationError(op, format string, args ...any) *Error {
	return &Error{Code: ErrValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func transportError(op string, cause error) *Error {
	return &Error{Code: ErrTransport, Op: op, Message: cause.Error(), cause: cause}
}

func apiError(op string, status int, body string) *Error {
	return &Error{
		Code:       ErrAPI,
		Op:         op,
		Message:    fmt.Sprintf("endpoint returned status %d", status),
		HTTPStatus: status,
		Body:       body,
	}
}

func responseFormatError(op string, cause error) *Error {
	return &Error{
		Code:    ErrResponseFormat,
		Op:      op,
		Message: "cannot decode response body: " + cause.Error(),
		cause:   cause,
	}
}
