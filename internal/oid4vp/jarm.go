package oid4vp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
)

// EphemeralKeyRequired reports whether a presentation using mode needs an ephemeral
// encryption key.
//
// direct_post.jwt with a signing-only JARM option is rejected: the wallet has nothing to
// encrypt to and the verifier would have nothing to decrypt with.
func EphemeralKeyRequired(mode domain.ResponseMode, jarm domain.JarmOption) (bool, error) {
	if !mode.IsJwtSecured() {
		return false, nil
	}
	if !domain.RequiresEphemeralKey(jarm) {
		return false, domain.NewMisconfigurationError(domain.MsgJarmEncryptionNotConfigured)
	}
	return true, nil
}

// EphemeralKeyGenerator creates the per-transaction JARM encryption key.
type EphemeralKeyGenerator struct {
	jarm domain.JarmOption
}

func NewEphemeralKeyGenerator(jarm domain.JarmOption) *EphemeralKeyGenerator {
	return &EphemeralKeyGenerator{jarm: jarm}
}

// Generate returns a fresh private key with a random kid, use=enc and the JARM JWE alg.
func (g *EphemeralKeyGenerator) Generate() (jwk.Key, error) {
	if !domain.RequiresEphemeralKey(g.jarm) {
		return nil, domain.NewMisconfigurationError(domain.MsgJarmEncryptionNotConfigured)
	}
	key, err := crypto.GenerateEphemeralEncryptionKey(g.jarm.JweAlg())
	if err != nil {
		return nil, domain.WrapCryptoError(err, "failed to generate ephemeral key")
	}
	return key, nil
}

// JarmVerifier turns a direct_post.jwt response into AuthorizationResponseData.
type JarmVerifier struct {
	walletKeys jws.KeyProvider
}

// NewJarmVerifier returns a verifier. walletKeys may be nil when the JARM option never
// involves a wallet signature.
func NewJarmVerifier(walletKeys jws.KeyProvider) *JarmVerifier {
	return &JarmVerifier{walletKeys: walletKeys}
}

// jarmClaims is the payload of a JARM token. vp_token may be a string or a JSON value.
type jarmClaims struct {
	State                  string                         `json:"state"`
	IDToken                string                         `json:"id_token,omitempty"`
	VPToken                json.RawMessage                `json:"vp_token,omitempty"`
	PresentationSubmission *domain.PresentationSubmission `json:"presentation_submission,omitempty"`
	Error                  string                         `json:"error,omitempty"`
	ErrorDescription       string                         `json:"error_description,omitempty"`
}

// VerifyJarmJwt decrypts and/or verifies token according to jarm and returns its claims.
//
// Encrypted tokens are decrypted with ephemeralKey. Signed and encrypted tokens are decrypted
// first and the nested JWS is then verified against the wallet keys.
func (v *JarmVerifier) VerifyJarmJwt(ctx context.Context, jarm domain.JarmOption, ephemeralKey jwk.Key, token string) (domain.AuthorizationResponseData, error) {
	if token == "" {
		return domain.AuthorizationResponseData{}, domain.NewValidationError("missing response")
	}

	var (
		payload []byte
		err     error
	)
	switch o := jarm.(type) {
	case domain.JarmSigned:
		payload, err = v.verify(ctx, token)
	case domain.JarmEncrypted:
		payload, err = decrypt(token, ephemeralKey, o)
	case domain.JarmSignedAndEncrypted:
		var inner []byte
		inner, err = decrypt(token, ephemeralKey, o.Encrypted)
		if err == nil {
			payload, err = v.verify(ctx, strings.TrimSpace(string(inner)))
		}
	default:
		return domain.AuthorizationResponseData{}, domain.NewMisconfigurationError("JARM option is not configured")
	}
	if err != nil {
		return domain.AuthorizationResponseData{}, err
	}

	var claims jarmClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return domain.AuthorizationResponseData{}, domain.WrapValidationError(err, "invalid JARM payload")
	}

	return domain.AuthorizationResponseData{
		State:                  claims.State,
		IDToken:                claims.IDToken,
		VPToken:                normalizeVPToken(claims.VPToken),
		PresentationSubmission: claims.PresentationSubmission,
		Error:                  claims.Error,
		ErrorDescription:       claims.ErrorDescription,
	}, nil
}

func (v *JarmVerifier) verify(ctx context.Context, token string) ([]byte, error) {
	if v.walletKeys == nil {
		return nil, domain.NewMisconfigurationError("wallet keys are not configured")
	}
	payload, err := crypto.VerifyCompactWithKeyProvider(ctx, token, v.walletKeys)
	if err != nil {
		return nil, domain.WrapCryptoError(err, "invalid JARM signature")
	}
	return payload, nil
}

func decrypt(token string, ephemeralKey jwk.Key, o domain.JarmEncrypted) ([]byte, error) {
	if ephemeralKey == nil {
		return nil, domain.NewStateError("presentation has no ephemeral key")
	}
	payload, err := crypto.Decrypt(token, ephemeralKey, o.Algorithm, o.Encode)
	if err != nil {
		return nil, domain.WrapCryptoError(err, "failed to decrypt JARM response")
	}
	return payload, nil
}

// normalizeVPToken returns a JSON string value unquoted and any other JSON value verbatim.
func normalizeVPToken(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// CheckState fails with a protocol mismatch unless the state decoded from a JARM token is the
// request id of the presentation being answered.
func CheckState(data domain.AuthorizationResponseData, requestID domain.RequestID) error {
	if data.State != requestID.String() {
		return domain.NewProtocolMismatchError(domain.MsgIncorrectState)
	}
	return nil
}
