package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. The HTTP layer maps kinds to
// status codes; business code branches on kinds, never on messages.
type Kind string

const (
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindNotFound           Kind = "NOT_FOUND"
	KindPermissionDenied   Kind = "PERMISSION_DENIED"
	KindNegativeStock      Kind = "NEGATIVE_STOCK"
	KindInsufficientStock  Kind = "INSUFFICIENT_STOCK"
	KindAlreadyInitialized Kind = "ALREADY_INITIALIZED"
	KindVariantRequired    Kind = "VARIANT_REQUIRED"
	KindVariantNotFound    Kind = "VARIANT_NOT_FOUND_FOR_REMOVAL"
	KindSameLocation       Kind = "SAME_LOCATION"
	KindConflict           Kind = "CONFLICT"
	KindInternal           Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new Error. A nil cause returns the same
// result as New.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind of err, or KindInternal when err is not an
// application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status code the boundary returns.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput, KindVariantRequired, KindSameLocation:
		return http.StatusBadRequest
	case KindNotFound, KindVariantNotFound:
		return http.StatusNotFound
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNegativeStock, KindInsufficientStock, KindAlreadyInitialized, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
