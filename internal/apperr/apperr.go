package apperr

import "fmt"

// Kind classifies an operation failure so the HTTP layer can map it to a
// status code without string matching.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindValidation         Kind = "VALIDATION"
	KindInsufficientStock  Kind = "INSUFFICIENT_STOCK"
	KindAssetUnavailable   Kind = "ASSET_UNAVAILABLE"
	KindAlreadyBorrowed    Kind = "ALREADY_BORROWED"
	KindNotBorrowed        Kind = "NOT_BORROWED"
	KindNotReturned        Kind = "NOT_RETURNED"
	KindCannotDeleteReturn Kind = "CANNOT_DELETE_RETURNED"
	KindConflict           Kind = "CONFLICT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindInternal           Kind = "INTERNAL"
)

// Error is the single error type returned by services. Details carries
// kind-specific payload (e.g. available stock) for the response body.
type Error struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string) *Error {
	return Newf(KindNotFound, "%s not found", entity)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

// InsufficientStock includes the available quantity and unit so the caller
// can show it directly.
func InsufficientStock(available int, unit string) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock: only %d %s available", available, unit),
		Details: map[string]interface{}{"available": available, "unit": unit},
	}
}

func Internal(message string) *Error {
	return New(KindInternal, message)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
