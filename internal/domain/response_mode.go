package domain

import "fmt"

// ResponseMode is how the wallet posts its answer back to the verifier.
type ResponseMode string

const (
	// ResponseModeDirectPost posts the response parameters as a form.
	ResponseModeDirectPost ResponseMode = "direct_post"

	// ResponseModeDirectPostJwt posts a single JARM token in the "response" form field.
	ResponseModeDirectPostJwt ResponseMode = "direct_post.jwt"
)

// ParseResponseMode maps a wire string to a ResponseMode.
func ParseResponseMode(s string) (ResponseMode, error) {
	switch ResponseMode(s) {
	case ResponseModeDirectPost, ResponseModeDirectPostJwt:
		return ResponseMode(s), nil
	default:
		return "", NewValidationError(fmt.Sprintf("unsupported response_mode %q", s))
	}
}

// IsJwtSecured reports whether the response is a JARM token.
func (m ResponseMode) IsJwtSecured() bool { return m == ResponseModeDirectPostJwt }

// JarmOption is one of JarmSigned, JarmEncrypted or JarmSignedAndEncrypted.
type JarmOption interface {
	// JwsAlg is the authorization_signed_response_alg, or "" if responses are not signed.
	JwsAlg() string
	// JweAlg is the authorization_encrypted_response_alg, or "" if responses are not encrypted.
	JweAlg() string
	// JweEnc is the authorization_encrypted_response_enc, or "" if responses are not encrypted.
	JweEnc() string
}

type JarmSigned struct {
	Algorithm string
}

type JarmEncrypted struct {
	Algorithm string
	Encode    string
}

type JarmSignedAndEncrypted struct {
	Signed    JarmSigned
	Encrypted JarmEncrypted
}

func (o JarmSigned) JwsAlg() string { return o.Algorithm }
func (o JarmSigned) JweAlg() string { return "" }
func (o JarmSigned) JweEnc() string { return "" }

func (o JarmEncrypted) JwsAlg() string { return "" }
func (o JarmEncrypted) JweAlg() string { return o.Algorithm }
func (o JarmEncrypted) JweEnc() string { return o.Encode }

func (o JarmSignedAndEncrypted) JwsAlg() string { return o.Signed.Algorithm }
func (o JarmSignedAndEncrypted) JweAlg() string { return o.Encrypted.Algorithm }
func (o JarmSignedAndEncrypted) JweEnc() string { return o.Encrypted.Encode }

// RequiresEphemeralKey reports whether responses under o are encrypted to a per-transaction key.
func RequiresEphemeralKey(o JarmOption) bool {
	switch o.(type) {
	case JarmEncrypted, JarmSignedAndEncrypted:
		return true
	default:
		return false
	}
}

// GetWalletResponseMethod is how the verifier's caller collects the wallet response.
// It is fixed at initiation.
type GetWalletResponseMethod interface {
	isGetWalletResponseMethod()
}

// Poll means the caller polls by transaction id. No response code is minted.
type Poll struct{}

// Redirect means the wallet is redirected to URITemplate with the response code substituted.
type Redirect struct {
	URITemplate string
}

func (Poll) isGetWalletResponseMethod()     {}
func (Redirect) isGetWalletResponseMethod() {}
