package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent extraction failures.
// Every *Error matches exactly one of these through errors.Is.
var (
	// ErrInvalidInput indicates a URL or ID that no adapter pattern matches.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates a required credential or template variable
	// could not be resolved from the page.
	ErrAuthRequired = errors.New("authentication required")

	// ErrTransport indicates a non-success HTTP response or network failure.
	ErrTransport = errors.New("transport failure")

	// ErrRateLimited indicates the platform rejected the request for quota reasons.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyResult indicates the conversation produced no usable messages.
	ErrEmptyResult = errors.New("empty result")

	// ErrMalformedPayload indicates a response that could not be interpreted.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNotFound indicates a requested adapter does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an adapter ID is already registered.
	ErrAlreadyExists = errors.New("already exists")
)

// Stable error codes surfaced to callers.
const (
	CodeInvalidInput = "E-PARSE-001"
	CodeParseFailed  = "E-PARSE-005"
)

// ErrorKind classifies an extraction failure.
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindAuthResolution   ErrorKind = "auth_resolution"
	KindTransport        ErrorKind = "transport"
	KindRateLimited      ErrorKind = "rate_limited"
	KindEmptyResult      ErrorKind = "empty_result"
	KindMalformedPayload ErrorKind = "malformed_payload"
)

// Error is the error type returned by adapters.
type Error struct {
	Code     string
	Kind     ErrorKind
	Platform string
	Message  string

	// Status is the HTTP status for transport failures, 0 otherwise.
	Status int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Platform != "" {
		msg = e.Platform + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps the error kind onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrAuthRequired:
		return e.Kind == KindAuthResolution
	case ErrTransport:
		return e.Kind == KindTransport || e.Kind == KindRateLimited
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrEmptyResult:
		return e.Kind == KindEmptyResult
	case ErrMalformedPayload:
		return e.Kind == KindMalformedPayload
	}
	return false
}

// NewInvalidInput reports a URL or ID no pattern accepts.
func NewInvalidInput(platform, format string, args ...any) *Error {
	return &Error{
		Code:     CodeInvalidInput,
		Kind:     KindInvalidInput,
		Platform: platform,
		Message:  fmt.Sprintf(format, args...),
	}
}

// NewAuthError reports a credential that could not be resolved.
func NewAuthError(platform, format string, args ...any) *Error {
	return &Error{
		Code:     CodeParseFailed,
		Kind:     KindAuthResolution,
		Platform: platform,
		Message:  fmt.Sprintf(format, args...),
	}
}

// NewTransportError reports a failed request. Status may be zero when the
// request never produced a response.
func NewTransportError(platform string, status int, err error) *Error {
	msg := "request failed"
	if status != 0 {
		msg = fmt.Sprintf("API responded with %d", status)
	}
	return &Error{
		Code:     CodeParseFailed,
		Kind:     KindTransport,
		Platform: platform,
		Message:  msg,
		Status:   status,
		Err:      err,
	}
}

// NewRateLimitError reports a quota rejection.
func NewRateLimitError(platform string, status int, err error) *Error {
	return &Error{
		Code:     CodeParseFailed,
		Kind:     KindRateLimited,
		Platform: platform,
		Message:  "API rate limit exceeded, please try again later",
		Status:   status,
		Err:      err,
	}
}

// NewEmptyResult reports a conversation without usable messages.
func NewEmptyResult(platform string) *Error {
	return &Error{
		Code:     CodeParseFailed,
		Kind:     KindEmptyResult,
		Platform: platform,
		Message:  "no messages found in conversation",
	}
}

// NewMalformedPayload reports a response that could not be interpreted.
func NewMalformedPayload(platform, format string, args ...any) *Error {
	return &Error{
		Code:     CodeParseFailed,
		Kind:     KindMalformedPayload,
		Platform: platform,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrorCode returns the stable code of err, or "" when err is not an *Error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
