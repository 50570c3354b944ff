// Package errors defines the structured error types used across the ovenlink
// appliance bridge. Every failure surfaced between components carries a machine
// code so callers can branch on failure class without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies a bridge failure.
type Code string

const (
	// CodeAuthentication means the OAuth tier is exhausted: both the refresh
	// grant and the password grant failed.
	CodeAuthentication Code = "authentication_failed"

	// CodeCredentialExchange means the identity-federation or temporary
	// credential tier failed.
	CodeCredentialExchange Code = "credential_exchange_failed"

	// CodeChannelConnect means the device channel could not be established.
	CodeChannelConnect Code = "channel_connect_failed"

	// CodeChannelUnavailable means a publish was attempted with no live
	// connection.
	CodeChannelUnavailable Code = "channel_unavailable"

	// CodeFavouriteNotFound means the requested favourite id is unknown.
	CodeFavouriteNotFound Code = "favourite_not_found"

	// CodeIncompleteFavourite means a favourite's cycle definition is absent
	// or empty and no command can be derived from it.
	CodeIncompleteFavourite Code = "incomplete_favourite"

	// CodeMalformedMessage means an inbound frame could not be decoded. It is
	// non-fatal: such frames are logged and dropped.
	CodeMalformedMessage Code = "malformed_message"

	// CodeSessionNotFound means no active session exists for the appliance.
	CodeSessionNotFound Code = "session_not_found"

	// CodeInvalidRequest means the caller supplied an unusable argument.
	CodeInvalidRequest Code = "invalid_request"

	// CodeInternal covers unexpected internal failures.
	CodeInternal Code = "internal_error"
)

// AppError is the structured error type returned by bridge components.
type AppError struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error-chain support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// New creates an AppError with the given code and message.
func New(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an AppError with the given code, message, and cause.
func Wrap(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// ================================================================================
// Domain-Specific Constructors
// ================================================================================

// ErrAuthentication creates an OAuth-tier failure.
func ErrAuthentication(reason string) *AppError {
	return New(CodeAuthentication, "oauth authentication failed: %s", reason)
}

// ErrCredentialExchange creates an identity/temporary-credential tier failure.
func ErrCredentialExchange(reason string) *AppError {
	return New(CodeCredentialExchange, "credential exchange failed: %s", reason)
}

// ErrChannelConnect creates a transport-level connect failure.
func ErrChannelConnect(reason string) *AppError {
	return New(CodeChannelConnect, "device channel connect failed: %s", reason)
}

// ErrChannelUnavailable creates a publish-without-connection failure.
func ErrChannelUnavailable() *AppError {
	return New(CodeChannelUnavailable, "no live device channel")
}

// ErrFavouriteNotFound creates an unknown-favourite failure.
func ErrFavouriteNotFound(id string) *AppError {
	return New(CodeFavouriteNotFound, "favourite %q not found", id)
}

// ErrIncompleteFavourite creates an unusable-favourite failure.
func ErrIncompleteFavourite(id string) *AppError {
	return New(CodeIncompleteFavourite, "favourite %q has no cycle definition", id)
}

// ErrMalformedMessage creates a dropped-frame failure.
func ErrMalformedMessage(topic string) *AppError {
	return New(CodeMalformedMessage, "undecodable payload on topic %s", topic)
}

// ErrSessionNotFound creates an unknown-session failure.
func ErrSessionNotFound(said string) *AppError {
	return New(CodeSessionNotFound, "no active session for appliance %s", said)
}

// ================================================================================
// Predicates
// ================================================================================

// CodeOf returns the failure code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsAuthentication reports an OAuth-tier failure.
func IsAuthentication(err error) bool { return Is(err, CodeAuthentication) }

// IsCredentialExchange reports an identity/STS-tier failure.
func IsCredentialExchange(err error) bool { return Is(err, CodeCredentialExchange) }

// IsChannelUnavailable reports a publish-without-connection failure.
func IsChannelUnavailable(err error) bool { return Is(err, CodeChannelUnavailable) }
