package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindNotFound        ErrorKind = "not_found"
	KindStorage         ErrorKind = "storage_error"
	KindInvalidRequest  ErrorKind = "invalid_request"
	KindInternal        ErrorKind = "internal_error"
)

// Error carries a kind, a caller-safe message and the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrStorage         = &Error{Kind: KindStorage, Message: "storage error"}
	ErrInvalidRequest  = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
)

// Unauthenticated reports a missing, malformed or rejected credential.
func Unauthenticated(message string, err error) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message, Err: err}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// StorageFailure wraps a backing store failure for the named operation.
func StorageFailure(operation string, err error) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf("storage operation failed: %s", operation), Err: err}
}

// InvalidRequest reports input rejected before any side effect.
func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message of err. Causes are never included,
// except for unauthenticated errors whose message already embeds the provider detail.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
