package oid4vp

import (
	"encoding/json"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// InitTransactionTO is the body of POST /ui/presentations.
type InitTransactionTO struct {
	// Type is one of "id_token", "vp_token" or "vp_token id_token".
	Type string `json:"type" example:"vp_token"`

	// IDTokenType is a space separated list of subject_signed_id_token / attester_signed_id_token.
	IDTokenType string `json:"id_token_type,omitempty" example:"subject_signed_id_token"`

	PresentationDefinition *domain.PresentationDefinition `json:"presentation_definition,omitempty"`

	Nonce string `json:"nonce" example:"nonce-1"`

	// ResponseMode is direct_post or direct_post.jwt. Defaults to the verifier's configured mode.
	ResponseMode *string `json:"response_mode,omitempty" example:"direct_post.jwt"`

	// JarMode is by_value or by_reference. Defaults to the verifier's configured mode.
	JarMode *string `json:"jar_mode,omitempty" example:"by_reference"`

	// PresentationDefinitionMode is by_value or by_reference.
	PresentationDefinitionMode *string `json:"presentation_definition_mode,omitempty" example:"by_value"`

	// WalletResponseRedirectURITemplate, when set, must contain {RESPONSE_CODE}.
	WalletResponseRedirectURITemplate string `json:"wallet_response_redirect_uri_template,omitempty" example:"https://verifier.example.com/callback#response_code={RESPONSE_CODE}"`
}

// JwtSecuredAuthorizationRequestTO is returned by Init. Exactly one of Request and RequestURI is set.
type JwtSecuredAuthorizationRequestTO struct {
	TransactionID string `json:"transaction_id"`
	ClientID      string `json:"client_id"`
	Request       string `json:"request,omitempty"`
	RequestURI    string `json:"request_uri,omitempty"`
}

// WalletResponseTO is what the verifier's caller receives once the wallet has answered.
type WalletResponseTO struct {
	IDToken                string                         `json:"id_token,omitempty"`
	VPToken                json.RawMessage                `json:"vp_token,omitempty" swaggertype:"string"`
	PresentationSubmission *domain.PresentationSubmission `json:"presentation_submission,omitempty"`
	Error                  string                         `json:"error,omitempty"`
	ErrorDescription       string                         `json:"error_description,omitempty"`
}

// WalletResponseAcceptedTO is returned to the wallet after a successful direct_post.
type WalletResponseAcceptedTO struct {
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// NewWalletResponseTO converts a recorded wallet response to its wire shape.
func NewWalletResponseTO(wr domain.WalletResponse) WalletResponseTO {
	switch r := wr.(type) {
	case domain.WalletResponseIDToken:
		return WalletResponseTO{IDToken: r.IDToken}
	case domain.WalletResponseVPToken:
		ps := r.PresentationSubmission
		return WalletResponseTO{VPToken: vpTokenJSON(r.VPToken), PresentationSubmission: &ps}
	case domain.WalletResponseIDAndVPToken:
		ps := r.PresentationSubmission
		return WalletResponseTO{IDToken: r.IDToken, VPToken: vpTokenJSON(r.VPToken), PresentationSubmission: &ps}
	case domain.WalletResponseError:
		return WalletResponseTO{Error: r.Value, ErrorDescription: r.Description}
	default:
		return WalletResponseTO{}
	}
}

// vpTokenJSON keeps structured vp_tokens (JSON objects and arrays) as JSON and quotes the rest.
func vpTokenJSON(vpToken string) json.RawMessage {
	if vpToken == "" {
		return nil
	}
	if (vpToken[0] == '{' || vpToken[0] == '[') && json.Valid([]byte(vpToken)) {
		return json.RawMessage(vpToken)
	}
	quoted, _ := json.Marshal(vpToken)
	return quoted
}

// AuthorisationResponse is what the wallet posts to the response URI: either the plain form
// fields (direct_post) or a single JARM token (direct_post.jwt).
type AuthorisationResponse interface {
	// EchoedState is the state form parameter, i.e. the request id the wallet says it is answering.
	EchoedState() string
	ResponseMode() domain.ResponseMode
}

type DirectPostResponse struct {
	Data domain.AuthorizationResponseData
}

type DirectPostJwtResponse struct {
	State    string
	Response string
}

func (r DirectPostResponse) EchoedState() string { return r.Data.State }

func (DirectPostResponse) ResponseMode() domain.ResponseMode { return domain.ResponseModeDirectPost }

func (r DirectPostJwtResponse) EchoedState() string { return r.State }

func (DirectPostJwtResponse) ResponseMode() domain.ResponseMode {
	return domain.ResponseModeDirectPostJwt
}
