package oid4vp

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// SelfIssuedAudience is the aud of every request object asking for a vp_token.
const SelfIssuedAudience = "https://self-issued.me/v2"

// RequestObjectType is the typ header of a signed request object.
const RequestObjectType = "oauth-authz-req+jwt"

// RequestObject is the unsigned claim set of an authorization request.
//
// List-valued claims are kept as slices here and joined with spaces on the wire,
// except aud which is always a JSON array (empty for id_token only requests).
type RequestObject struct {
	ClientIDScheme            string
	ResponseType              []string
	PresentationDefinitionURI string
	PresentationDefinition    *domain.PresentationDefinition
	Scope                     []string
	IDTokenType               []string
	Nonce                     string
	ResponseMode              string
	ResponseURI               string
	Audience                  []string
	State                     string
	IssuedAt                  time.Time
	ClientID                  string
	ClientMetadata            *ClientMetadata
}

// ClientMetadata is the client_metadata claim.
type ClientMetadata struct {
	IDTokenSignedResponseAlg          string   `json:"id_token_signed_response_alg"`
	IDTokenEncryptedResponseAlg       string   `json:"id_token_encrypted_response_alg"`
	IDTokenEncryptedResponseEnc       string   `json:"id_token_encrypted_response_enc"`
	SubjectSyntaxTypesSupported       []string `json:"subject_syntax_types_supported"`
	JWKS                              jwk.Set  `json:"jwks,omitempty"`
	JWKSURI                           string   `json:"jwks_uri,omitempty"`
	AuthorizationSignedResponseAlg    string   `json:"authorization_signed_response_alg,omitempty"`
	AuthorizationEncryptedResponseAlg string   `json:"authorization_encrypted_response_alg,omitempty"`
	AuthorizationEncryptedResponseEnc string   `json:"authorization_encrypted_response_enc,omitempty"`
}

type requestObjectClaims struct {
	Issuer                    string                         `json:"iss"`
	Audience                  []string                       `json:"aud"`
	ResponseType              string                         `json:"response_type"`
	ResponseMode              string                         `json:"response_mode"`
	ClientID                  string                         `json:"client_id"`
	Scope                     string                         `json:"scope,omitempty"`
	State                     string                         `json:"state"`
	Nonce                     string                         `json:"nonce"`
	ClientIDScheme            string                         `json:"client_id_scheme"`
	IssuedAt                  int64                          `json:"iat"`
	IDTokenType               string                         `json:"id_token_type,omitempty"`
	PresentationDefinition    *domain.PresentationDefinition `json:"presentation_definition,omitempty"`
	PresentationDefinitionURI string                         `json:"presentation_definition_uri,omitempty"`
	ClientMetadata            *ClientMetadata                `json:"client_metadata,omitempty"`
	ResponseURI               string                         `json:"response_uri,omitempty"`
}

// MarshalJSON encodes the request object with the claim names wallets expect.
func (r RequestObject) MarshalJSON() ([]byte, error) {
	audience := r.Audience
	if audience == nil {
		audience = []string{}
	}
	return json.Marshal(requestObjectClaims{
		Issuer:                    r.ClientID,
		Audience:                  audience,
		ResponseType:              strings.Join(r.ResponseType, " "),
		ResponseMode:              r.ResponseMode,
		ClientID:                  r.ClientID,
		Scope:                     strings.Join(r.Scope, " "),
		State:                     r.State,
		Nonce:                     r.Nonce,
		ClientIDScheme:            r.ClientIDScheme,
		IssuedAt:                  r.IssuedAt.Unix(),
		IDTokenType:               strings.Join(r.IDTokenType, " "),
		PresentationDefinition:    r.PresentationDefinition,
		PresentationDefinitionURI: r.PresentationDefinitionURI,
		ClientMetadata:            r.ClientMetadata,
		ResponseURI:               r.ResponseURI,
	})
}

// AssembleRequestObject derives the request object for a Requested presentation.
func AssembleRequestObject(cfg domain.VerifierConfig, at time.Time, p domain.Requested) (RequestObject, error) {
	if cfg.ClientIDScheme == nil {
		return RequestObject{}, domain.NewMisconfigurationError("client id scheme is not configured")
	}

	pd, err := presentationDefinitionClaims(p)
	if err != nil {
		return RequestObject{}, err
	}

	responseURI, err := cfg.ResponseURLBuilder.Build(p.RequestID)
	if err != nil {
		return RequestObject{}, err
	}

	metadata, err := AssembleClientMetadata(cfg.ClientMetaData, p)
	if err != nil {
		return RequestObject{}, err
	}

	return RequestObject{
		ClientIDScheme:            cfg.ClientIDScheme.SchemeName(),
		ResponseType:              responseType(p.Type),
		PresentationDefinitionURI: pd.uri,
		PresentationDefinition:    pd.value,
		Scope:                     scope(p.Type),
		IDTokenType:               idTokenType(p.Type),
		Nonce:                     p.Nonce.String(),
		ResponseMode:              string(p.ResponseMode),
		ResponseURI:               responseURI,
		Audience:                  audience(p.Type),
		State:                     p.RequestID.String(),
		IssuedAt:                  at,
		ClientID:                  cfg.ClientIDScheme.Identity().ClientID,
		ClientMetadata:            metadata,
	}, nil
}

func scope(t domain.PresentationType) []string {
	if domain.HasIDToken(t) {
		return []string{"openid"}
	}
	return []string{}
}

func idTokenType(t domain.PresentationType) []string {
	types := domain.IDTokenTypesOf(t)
	out := make([]string, 0, len(types))
	for _, it := range types {
		out = append(out, string(it))
	}
	return out
}

func responseType(t domain.PresentationType) []string {
	switch t.(type) {
	case domain.IDTokenRequest:
		return []string{"id_token"}
	case domain.VPTokenRequest:
		return []string{"vp_token"}
	case domain.IDAndVPTokenRequest:
		return []string{"vp_token", "id_token"}
	default:
		return nil
	}
}

func audience(t domain.PresentationType) []string {
	if _, ok := t.(domain.IDTokenRequest); ok {
		return []string{}
	}
	return []string{SelfIssuedAudience}
}

type pdClaims struct {
	value *domain.PresentationDefinition
	uri   string
}

func presentationDefinitionClaims(p domain.Requested) (pdClaims, error) {
	pd, hasPD := domain.PresentationDefinitionOf(p.Type)
	if hasPD && pd.ID == "" && len(pd.InputDescriptors) == 0 {
		return pdClaims{}, domain.NewValidationError(domain.MsgMissingPresentationDefinition)
	}

	switch mode := p.PresentationDefinitionMode.(type) {
	case nil:
		return pdClaims{}, nil
	case domain.ByValue:
		if !hasPD {
			return pdClaims{}, nil
		}
		return pdClaims{value: &pd}, nil
	case domain.ByReference:
		uri, err := mode.Builder.Build(p.RequestID)
		if err != nil {
			return pdClaims{}, err
		}
		return pdClaims{uri: uri}, nil
	default:
		return pdClaims{}, domain.NewValidationError("unknown presentation definition mode")
	}
}

// AssembleClientMetadata derives client_metadata for p.
//
// The JWK set is the public part of the presentation's ephemeral key. JARM algorithm
// fields are only present when the response mode is direct_post.jwt.
func AssembleClientMetadata(cfg domain.ClientMetaData, p domain.Requested) (*ClientMetadata, error) {
	metadata := &ClientMetadata{
		IDTokenSignedResponseAlg:    cfg.IDTokenSignedResponseAlg,
		IDTokenEncryptedResponseAlg: cfg.IDTokenEncryptedResponseAlg,
		IDTokenEncryptedResponseEnc: cfg.IDTokenEncryptedResponseEnc,
		SubjectSyntaxTypesSupported: cfg.SubjectSyntaxTypesSupported,
	}

	switch mode := cfg.JWKOption.(type) {
	case domain.ByValue:
		if p.EphemeralKey != nil {
			set, err := crypto.PublicJWKSet(p.EphemeralKey)
			if err != nil {
				return nil, domain.WrapCryptoError(err, "invalid ephemeral key")
			}
			metadata.JWKS = set
		}
	case domain.ByReference:
		uri, err := mode.Builder.Build(p.RequestID)
		if err != nil {
			return nil, err
		}
		metadata.JWKSURI = uri
	}

	if p.ResponseMode.IsJwtSecured() && cfg.JarmOption != nil {
		metadata.AuthorizationSignedResponseAlg = cfg.JarmOption.JwsAlg()
		metadata.AuthorizationEncryptedResponseAlg = cfg.JarmOption.JweAlg()
		metadata.AuthorizationEncryptedResponseEnc = cfg.JarmOption.JweEnc()
	}
	return metadata, nil
}
