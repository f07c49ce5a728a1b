// Package apperr defines the error taxonomy handlers return. Every failure
// crossing the HTTP boundary is one of these kinds; the respond package owns
// the single translation into status codes and response envelopes.
package apperr

import "fmt"

// Kind classifies a failure for boundary translation.
type Kind int

const (
	KindValidation Kind = iota
	KindBadCredentials
	KindUnauthenticated
	KindNotFound
	KindConflict
	KindInternal
)

// Error pairs a client-safe message with an optional internal cause.
// The cause is logged server-side only and never echoed to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation flags malformed or missing input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// BadCredentials flags a failed login. The message stays generic so unknown
// email and wrong password are indistinguishable to clients.
func BadCredentials(message string) *Error {
	return &Error{Kind: KindBadCredentials, Message: message}
}

// Unauthenticated flags a missing, invalid, or orphaned token.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// NotFound flags a missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict flags a uniqueness violation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps a server-side failure behind a generic client message.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
