package crypto

import "fmt"

// Error represents a structured error from the crypto package
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "validation"
	ErrCodeInvalidSignature ErrorCode = "invalid_signature"
	ErrCodeDecryption       ErrorCode = "decryption"
	ErrCodeCertificate      ErrorCode = "certificate"
	ErrCodeKeyManagement    ErrorCode = "key_management"
	ErrCodeInternal         ErrorCode = "internal"
)

// CryptoError represents a structured error from the crypto package
type CryptoError struct {

	// code is the cryptoerror code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *CryptoError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *CryptoError) Code() ErrorCode { return e.code }
func (e *CryptoError) Unwrap() error   { return e.wrapped }

// NewValidationError creates a validation error for invalid input.
// Use this for errors related to missing required fields, bad format,
// invalid JSON, bad encoding, or unsupported algorithms.
//
// The returned error will have code ErrCodeValidation.
func NewValidationError(msg string) error {
	return &CryptoError{code: ErrCodeValidation, message: msg}
}

// WrapValidationError wraps an existing error as a validation error.
//
// The returned error will have code ErrCodeValidation.
func WrapValidationError(err error, msg string) error {
	return &CryptoError{code: ErrCodeValidation, message: msg, wrapped: err}
}

// WrapSignatureError wraps an existing error as a signature error.
// Use this for errors related to signing failures, signature verification failures or malformed signatures.
//
// The returned error will have code ErrCodeInvalidSignature.
func WrapSignatureError(err error, msg string) error {
	return &CryptoError{code: ErrCodeInvalidSignature, message: msg, wrapped: err}
}

// NewDecryptionError creates a decryption error.
//
// The returned error will have code ErrCodeDecryption.
func NewDecryptionError(msg string) error {
	return &CryptoError{code: ErrCodeDecryption, message: msg}
}

// WrapDecryptionError wraps an existing error as a decryption error.
// Use this for malformed JWEs, algorithm mismatches and failed content decryption.
//
// The returned error will have code ErrCodeDecryption.
func WrapDecryptionError(err error, msg string) error {
	return &CryptoError{code: ErrCodeDecryption, message: msg, wrapped: err}
}

// NewCertificateError creates a certificate validation error.
//
// The returned error will have code ErrCodeCertificate.
func NewCertificateError(msg string) error {
	return &CryptoError{code: ErrCodeCertificate, message: msg}
}

// WrapCertificateError wraps an existing error as a certificate error.
// Use this for errors related to unparseable certificates or chains that do not match the signing key.
//
// The returned error will have code ErrCodeCertificate.
func WrapCertificateError(err error, msg string) error {
	return &CryptoError{code: ErrCodeCertificate, message: msg, wrapped: err}
}

// NewKeyManagementError creates a key management error.
// Use this for errors related to key loading, key generation, key not found,
// invalid key format, or JWK parsing failures.
//
// The returned error will have code ErrCodeKeyManagement.
func NewKeyManagementError(msg string) error {
	return &CryptoError{code: ErrCodeKeyManagement, message: msg}
}

// WrapKeyManagementError wraps an existing error as a key management error,
//
// The returned error will have code ErrCodeKeyManagement.
func WrapKeyManagementError(err error, msg string) error {
	return &CryptoError{code: ErrCodeKeyManagement, message: msg, wrapped: err}
}

// WrapInternalError wraps an existing error as an internal error.
// Use this for errors related to crypto library failures, unexpected nil values,
// or system errors that should not normally occur.
//
// The returned error will have code ErrCodeInternal.
func WrapInternalError(err error, msg string) error {
	return &CryptoError{code: ErrCodeInternal, message: msg, wrapped: err}
}
