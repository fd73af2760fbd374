// algorithm.go maps the algorithm names used in configuration and on the wire to jwx algorithms.
//
// Request objects can be signed with ES256, ES384, EdDSA or RS256.
// JARM responses can be encrypted with the ECDH-ES family (ephemeral P-256 key) or RSA-OAEP-256 (ephemeral RSA key).
package crypto

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwa"
)

var supportedSignatureAlgorithms = []string{"ES256", "ES384", "EdDSA", "RS256"}

var supportedKeyEncryptionAlgorithms = []string{"ECDH-ES", "ECDH-ES+A128KW", "ECDH-ES+A256KW", "RSA-OAEP-256"}

var supportedContentEncryptionAlgorithms = []string{"A128CBC-HS256", "A256CBC-HS512", "A128GCM", "A256GCM"}

// SignatureAlgorithm returns the jwx signature algorithm for name.
func SignatureAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	var zero jwa.SignatureAlgorithm
	if !slices.Contains(supportedSignatureAlgorithms, name) {
		return zero, NewValidationError(fmt.Sprintf("unsupported signature algorithm %q (supported: %s)",
			name, strings.Join(supportedSignatureAlgorithms, ", ")))
	}
	alg, ok := jwa.LookupSignatureAlgorithm(name)
	if !ok {
		return zero, NewValidationError(fmt.Sprintf("unknown signature algorithm %q", name))
	}
	return alg, nil
}

// KeyEncryptionAlgorithm returns the jwx key encryption algorithm for name.
func KeyEncryptionAlgorithm(name string) (jwa.KeyEncryptionAlgorithm, error) {
	var zero jwa.KeyEncryptionAlgorithm
	if !slices.Contains(supportedKeyEncryptionAlgorithms, name) {
		return zero, NewValidationError(fmt.Sprintf("unsupported key encryption algorithm %q (supported: %s)",
			name, strings.Join(supportedKeyEncryptionAlgorithms, ", ")))
	}
	alg, ok := jwa.LookupKeyEncryptionAlgorithm(name)
	if !ok {
		return zero, NewValidationError(fmt.Sprintf("unknown key encryption algorithm %q", name))
	}
	return alg, nil
}

// ContentEncryptionAlgorithm returns the jwx content encryption algorithm for name.
func ContentEncryptionAlgorithm(name string) (jwa.ContentEncryptionAlgorithm, error) {
	var zero jwa.ContentEncryptionAlgorithm
	if !slices.Contains(supportedContentEncryptionAlgorithms, name) {
		return zero, NewValidationError(fmt.Sprintf("unsupported content encryption algorithm %q (supported: %s)",
			name, strings.Join(supportedContentEncryptionAlgorithms, ", ")))
	}
	alg, ok := jwa.LookupContentEncryptionAlgorithm(name)
	if !ok {
		return zero, NewValidationError(fmt.Sprintf("unknown content encryption algorithm %q", name))
	}
	return alg, nil
}

// isECDHES reports whether alg needs an EC key agreement key.
func isECDHES(alg string) bool {
	return strings.HasPrefix(alg, "ECDH-ES")
}
