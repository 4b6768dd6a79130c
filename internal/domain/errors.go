package domain

import "fmt"

// ErrorKind classifies a domain error for callers and the HTTP layer
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"          // Bad input, rejected before any write
	KindNotFound          ErrorKind = "not_found"           // Unknown id or unresolved identity
	KindPermission        ErrorKind = "permission"          // Cross-user access
	KindInvariant         ErrorKind = "invariant_violation" // Operation would break a ledger invariant
	KindAmbiguousIdentity ErrorKind = "ambiguous_identity"  // Several users match a fuzzy phone lookup
)

// Error is the single error type returned by the ledger for expected failures
type Error struct {
	Kind    ErrorKind // Error class
	Code    string    // Machine readable code, e.g. INVALID_AMOUNT
	Message string    // Message safe to show to the end user
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Is matches on kind, and on code when the target carries one
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinels for errors.Is checks by kind
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrPermission        = &Error{Kind: KindPermission}
	ErrInvariant         = &Error{Kind: KindInvariant}
	ErrAmbiguousIdentity = &Error{Kind: KindAmbiguousIdentity}
)

// Validation builds a validation error
func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error
func NotFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Permission builds a permission error
func Permission(code, format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Invariant builds an invariant violation error
func Invariant(code, format string, args ...any) *Error {
	return &Error{Kind: KindInvariant, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Ambiguous builds an ambiguous identity error
func Ambiguous(code, format string, args ...any) *Error {
	return &Error{Kind: KindAmbiguousIdentity, Code: code, Message: fmt.Sprintf(format, args...)}
}
