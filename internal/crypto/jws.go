// jws.go - Functions for signing and verifying JWS (JSON Web Signature) in compact serialization.
//
// The caller chooses the protected headers. kid and x5c are only written when requested
// (signing uses the raw private key, so jwx does not copy members of the JWK into the header).
package crypto

import (
	"context"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v3/cert"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
)

// SignOptions selects the protected headers of a compact JWS.
type SignOptions struct {
	// Type is the typ header, e.g. "oauth-authz-req+jwt". Omitted when empty.
	Type string

	// KeyID is the kid header. Omitted when empty.
	KeyID string

	// CertChain is the x5c header. Omitted when nil.
	CertChain *cert.Chain
}

// SignCompact signs payload with key using alg and returns the JWS compact serialization.
func SignCompact(payload []byte, key jwk.Key, alg string, opts SignOptions) (string, error) {
	signatureAlg, err := SignatureAlgorithm(alg)
	if err != nil {
		return "", err
	}
	signer, err := exportSigner(key)
	if err != nil {
		return "", err
	}

	hdr := jws.NewHeaders()
	if opts.Type != "" {
		if err := hdr.Set(jws.TypeKey, opts.Type); err != nil {
			return "", WrapInternalError(err, "failed to set typ header")
		}
	}
	if opts.KeyID != "" {
		if err := hdr.Set(jws.KeyIDKey, opts.KeyID); err != nil {
			return "", WrapInternalError(err, "failed to set kid header")
		}
	}
	if opts.CertChain != nil {
		if opts.CertChain.Len() == 0 {
			return "", NewValidationError("certificate chain is empty")
		}
		if err := hdr.Set(jws.X509CertChainKey, opts.CertChain); err != nil {
			return "", WrapInternalError(err, "failed to set x5c header")
		}
	}

	signed, err := jws.Sign(payload, jws.WithKey(signatureAlg, signer, jws.WithProtectedHeaders(hdr)))
	if err != nil {
		return "", WrapSignatureError(err, "failed to sign payload")
	}
	return string(signed), nil
}

// VerifyCompactWithKeyProvider verifies a compact JWS using keys supplied by provider
// (see jws.KeyProvider) and returns the payload.
func VerifyCompactWithKeyProvider(ctx context.Context, token string, provider jws.KeyProvider) ([]byte, error) {
	if !IsCompactJWS(token) {
		return nil, NewValidationError("invalid JWS format")
	}
	payload, err := jws.Verify([]byte(token), jws.WithKeyProvider(provider), jws.WithContext(ctx))
	if err != nil {
		return nil, WrapSignatureError(err, "failed to verify JWS")
	}
	return payload, nil
}

// VerifyCompactWithKey verifies a compact JWS with a single public key.
func VerifyCompactWithKey(token string, key jwk.Key, alg string) ([]byte, error) {
	signatureAlg, err := SignatureAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	payload, err := jws.Verify([]byte(token), jws.WithKey(signatureAlg, key))
	if err != nil {
		return nil, WrapSignatureError(err, "failed to verify JWS")
	}
	return payload, nil
}

// ParseProtectedHeaders returns the protected headers of a compact JWS without verifying it.
func ParseProtectedHeaders(token string) (jws.Headers, error) {
	if !IsCompactJWS(token) {
		return nil, NewValidationError("invalid JWS format")
	}
	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return nil, WrapValidationError(err, "failed to parse JWS")
	}
	sigs := msg.Signatures()
	if len(sigs) != 1 {
		return nil, NewValidationError(fmt.Sprintf("expected one signature, got %d", len(sigs)))
	}
	return sigs[0].ProtectedHeaders(), nil
}

// IsCompactJWS reports whether token has the three segment shape header.payload.signature
func IsCompactJWS(token string) bool {
	return strings.Count(token, ".") == 2
}

// IsCompactJWE reports whether token has the five segment JWE compact shape.
func IsCompactJWE(token string) bool {
	return strings.Count(token, ".") == 4
}
