package oid4vp

import (
	"encoding/json"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// RequestObjectSigner produces the signed JAR for a Requested presentation.
type RequestObjectSigner struct{}

// NewRequestObjectSigner returns a signer that uses the client's JAR signing key.
func NewRequestObjectSigner() *RequestObjectSigner {
	return &RequestObjectSigner{}
}

// Sign assembles the request object for p and signs it as a compact JWS.
//
// The claim set is canonicalized (RFC 8785) before signing. Pre-registered clients get a kid
// header when the signing key has one; X.509 SAN clients get an x5c header when the key
// carries a certificate chain.
func (s *RequestObjectSigner) Sign(cfg domain.VerifierConfig, at time.Time, p domain.Requested) (string, error) {
	ro, err := AssembleRequestObject(cfg, at, p)
	if err != nil {
		return "", err
	}

	claims, err := json.Marshal(ro)
	if err != nil {
		return "", domain.WrapCryptoError(err, "failed to encode request object")
	}
	canonical, err := crypto.CanonicalizeJSON(claims)
	if err != nil {
		return "", domain.WrapCryptoError(err, "failed to canonicalize request object")
	}

	signing := cfg.ClientIDScheme.Identity().JarSigning
	if signing.Key == nil {
		return "", domain.NewMisconfigurationError("request object signing key is not configured")
	}

	opts := crypto.SignOptions{Type: RequestObjectType}
	switch cfg.ClientIDScheme.(type) {
	case domain.PreRegistered:
		if kid, ok := signing.Key.KeyID(); ok {
			opts.KeyID = kid
		}
	case domain.X509SanDNS, domain.X509SanURI:
		if chain, ok := signing.Key.X509CertChain(); ok && chain.Len() > 0 {
			opts.CertChain = chain
		}
	}

	jwt, err := crypto.SignCompact(canonical, signing.Key, signing.Algorithm, opts)
	if err != nil {
		return "", domain.WrapCryptoError(err, "failed to sign request object")
	}
	return jwt, nil
}
