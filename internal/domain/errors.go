package domain

// errors.go defines the error taxonomy used by the verifier core.

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error.
type ErrorCode string

const (
	// CodeValidation is used for malformed input detected at construction (empty ids, missing fields, bad templates).
	CodeValidation ErrorCode = "validation"

	// CodeState is used when a stage transition is not allowed from the current stage.
	CodeState ErrorCode = "state"

	// CodeProtocolMismatch is used for response mode, state echo or response code mismatches.
	CodeProtocolMismatch ErrorCode = "protocol_mismatch"

	// CodeNotFound is used when an identifier does not resolve to a presentation.
	CodeNotFound ErrorCode = "not_found"

	// CodeCrypto is used for signing, verification and decryption failures.
	CodeCrypto ErrorCode = "crypto"

	// CodeMisconfiguration is used when the verifier configuration cannot serve the request
	// (e.g. an encrypted response is required but only signing is configured).
	CodeMisconfiguration ErrorCode = "misconfiguration"

	// CodeInternal is used for faults of the verifier itself, such as an id generator failure.
	CodeInternal ErrorCode = "internal"
)

// Error is the structured error returned by the domain, JAR/JARM and orchestration layers.
type Error struct {

	// code is the domain error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Message() string { return e.message }
func (e *Error) Unwrap() error   { return e.wrapped }

// Is matches on code so that errors.Is(err, &Error{code: CodeNotFound}) works for any message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// HasCode reports whether err (or any error it wraps) is a *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.code == code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		return ""
	}
	return domainErr.code
}

// NewValidationError creates an error for malformed input.
//
// The returned error will have code CodeValidation.
func NewValidationError(msg string) error {
	return &Error{code: CodeValidation, message: msg}
}

// WrapValidationError wraps an existing error as a validation error.
//
// The returned error will have code CodeValidation.
func WrapValidationError(err error, msg string) error {
	return &Error{code: CodeValidation, message: msg, wrapped: err}
}

// NewStateError creates an error for an illegal stage transition or a presentation in an unexpected stage.
//
// The returned error will have code CodeState.
func NewStateError(msg string) error {
	return &Error{code: CodeState, message: msg}
}

// NewProtocolMismatchError creates an error for response mode, state or response code mismatches.
//
// The returned error will have code CodeProtocolMismatch.
func NewProtocolMismatchError(msg string) error {
	return &Error{code: CodeProtocolMismatch, message: msg}
}

// NewNotFoundError creates an error for an unknown identifier.
//
// The returned error will have code CodeNotFound.
func NewNotFoundError(msg string) error {
	return &Error{code: CodeNotFound, message: msg}
}

// WrapCryptoError wraps a failure reported by a signing, verification or decryption collaborator.
//
// The returned error will have code CodeCrypto.
func WrapCryptoError(err error, msg string) error {
	return &Error{code: CodeCrypto, message: msg, wrapped: err}
}

// NewMisconfigurationError creates an error for a verifier configuration that cannot serve the request.
//
// The returned error will have code CodeMisconfiguration.
func NewMisconfigurationError(msg string) error {
	return &Error{code: CodeMisconfiguration, message: msg}
}

// WrapInternalError wraps a failure of a verifier collaborator that is not caused by the caller's input.
//
// The returned error will have code CodeInternal.
func WrapInternalError(err error, msg string) error {
	return &Error{code: CodeInternal, message: msg, wrapped: err}
}

// ErrPresentationNotFound is returned by presentation stores for unknown ids.
// errors.Is matches it against any not_found error.
var ErrPresentationNotFound = NewNotFoundError("presentation not found")

// Named failures that callers and tests match on by message.
const (
	MsgIncorrectState                = "Incorrect state"
	MsgMissingIDToken                = "missing id_token"
	MsgMissingVpToken                = "missing vp_token"
	MsgMissingPresentationSubmission = "missing presentation_submission"
	MsgMissingPresentationDefinition = "missing presentation_definition"
	MsgMissingNonce                  = "missing nonce"
	MsgMissingState                  = "missing state"
	MsgUnexpectedResponseMode        = "unexpected response mode"
	MsgInvalidResponseCode           = "invalid response code"
	MsgPresentationExpired           = "presentation has expired"
	MsgJarmEncryptionNotConfigured   = "response mode requires JARM encryption but only signing is configured"
)
