package oid4vp

import (
	"encoding/json"
	"testing"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleRequestObject_DerivesFromPresentationType(t *testing.T) {
	cfg := newTestConfig(t)
	idTypes := []domain.IDTokenType{domain.IDTokenTypeSubjectSigned, domain.IDTokenTypeAttesterSigned}

	tests := []struct {
		name             string
		presentationType domain.PresentationType
		wantResponseType []string
		wantScope        []string
		wantAudience     []string
		wantIDTokenType  []string
	}{
		{
			name:             "id token only",
			presentationType: domain.IDTokenRequest{IDTokenTypes: idTypes},
			wantResponseType: []string{"id_token"},
			wantScope:        []string{"openid"},
			wantAudience:     []string{},
			wantIDTokenType:  []string{"subject_signed_id_token", "attester_signed_id_token"},
		},
		{
			name:             "vp token only",
			presentationType: domain.VPTokenRequest{PresentationDefinition: testPD},
			wantResponseType: []string{"vp_token"},
			wantScope:        []string{},
			wantAudience:     []string{SelfIssuedAudience},
			wantIDTokenType:  []string{},
		},
		{
			name:             "vp and id token",
			presentationType: domain.IDAndVPTokenRequest{IDTokenTypes: idTypes[:1], PresentationDefinition: testPD},
			wantResponseType: []string{"vp_token", "id_token"},
			wantScope:        []string{"openid"},
			wantAudience:     []string{SelfIssuedAudience},
			wantIDTokenType:  []string{"subject_signed_id_token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newRequested(t, withType(tt.presentationType))

			ro, err := AssembleRequestObject(cfg, testNow, p)
			require.NoError(t, err)

			assert.Equal(t, tt.wantResponseType, ro.ResponseType)
			assert.Equal(t, tt.wantScope, ro.Scope)
			assert.Equal(t, tt.wantAudience, ro.Audience)
			assert.Equal(t, tt.wantIDTokenType, ro.IDTokenType)
			assert.Equal(t, "req-1", ro.State)
			assert.Equal(t, "nonce-1", ro.Nonce)
			assert.Equal(t, "verifier", ro.ClientID)
			assert.Equal(t, "pre-registered", ro.ClientIDScheme)
			assert.Equal(t, "direct_post", ro.ResponseMode)
			assert.Equal(t, "https://verifier.example.com/wallet/direct_post", ro.ResponseURI)
			assert.True(t, ro.IssuedAt.Equal(testNow))
		})
	}
}

func TestAssembleRequestObject_PresentationDefinitionEmbedding(t *testing.T) {
	cfg := newTestConfig(t)
	byRef := domain.ByReference{Builder: domain.URLWithRequestID("https://verifier.example.com/wallet/pd/{requestId}")}

	tests := []struct {
		name      string
		opts      []requestedOption
		wantValue bool
		wantURI   string
	}{
		{name: "by value", opts: []requestedOption{withPDMode(domain.ByValue{})}, wantValue: true},
		{name: "by reference", opts: []requestedOption{withPDMode(byRef)}, wantURI: "https://verifier.example.com/wallet/pd/req-1"},
		{name: "unset", opts: []requestedOption{withPDMode(nil)}},
		{
			name: "by value without a definition",
			opts: []requestedOption{
				withPDMode(domain.ByValue{}),
				withType(domain.IDTokenRequest{IDTokenTypes: []domain.IDTokenType{domain.IDTokenTypeSubjectSigned}}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ro, err := AssembleRequestObject(cfg, testNow, newRequested(t, tt.opts...))
			require.NoError(t, err)

			if tt.wantValue {
				require.NotNil(t, ro.PresentationDefinition)
				assert.Equal(t, "pd-1", ro.PresentationDefinition.ID)
			} else {
				assert.Nil(t, ro.PresentationDefinition)
			}
			assert.Equal(t, tt.wantURI, ro.PresentationDefinitionURI)
		})
	}
}

func TestAssembleRequestObject_EmptyPresentationDefinitionFails(t *testing.T) {
	cfg := newTestConfig(t)
	p := newRequested(t, withType(domain.VPTokenRequest{}))

	_, err := AssembleRequestObject(cfg, testNow, p)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeValidation))
}

func TestAssembleClientMetadata(t *testing.T) {
	cfg := newTestConfig(t)

	t.Run("jwks by value holds only the public ephemeral key", func(t *testing.T) {
		p := newRequested(t, withJwtResponseMode(t))

		md, err := AssembleClientMetadata(cfg.ClientMetaData, p)
		require.NoError(t, err)
		require.NotNil(t, md.JWKS)
		require.Equal(t, 1, md.JWKS.Len())

		raw, err := json.Marshal(md)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), `"d":`)

		key, _ := md.JWKS.Key(0)
		kid, _ := key.KeyID()
		wantKid, _ := p.EphemeralKey.KeyID()
		assert.Equal(t, wantKid, kid)

		assert.Equal(t, "ECDH-ES", md.AuthorizationEncryptedResponseAlg)
		assert.Equal(t, "A128CBC-HS256", md.AuthorizationEncryptedResponseEnc)
		assert.Empty(t, md.AuthorizationSignedResponseAlg)
	})

	t.Run("jwks by reference", func(t *testing.T) {
		mdCfg := cfg.ClientMetaData
		mdCfg.JWKOption = domain.ByReference{Builder: domain.URLWithRequestID("https://verifier.example.com/wallet/jarm/{requestId}/jwks.json")}

		md, err := AssembleClientMetadata(mdCfg, newRequested(t, withJwtResponseMode(t)))
		require.NoError(t, err)
		assert.Nil(t, md.JWKS)
		assert.Equal(t, "https://verifier.example.com/wallet/jarm/req-1/jwks.json", md.JWKSURI)
	})

	t.Run("plain direct_post has no jwks and no JARM fields", func(t *testing.T) {
		md, err := AssembleClientMetadata(cfg.ClientMetaData, newRequested(t))
		require.NoError(t, err)
		assert.Nil(t, md.JWKS)
		assert.Empty(t, md.JWKSURI)
		assert.Empty(t, md.AuthorizationEncryptedResponseAlg)
		assert.Empty(t, md.AuthorizationEncryptedResponseEnc)

		raw, err := json.Marshal(md)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "authorization_")
		assert.Contains(t, string(raw), `"subject_syntax_types_supported":["urn:ietf:params:oauth:jwk-thumbprint"]`)
	})
}

func TestRequestObject_MarshalJSON(t *testing.T) {
	cfg := newTestConfig(t)
	p := newRequested(t, withType(domain.IDAndVPTokenRequest{
		IDTokenTypes:           []domain.IDTokenType{domain.IDTokenTypeSubjectSigned},
		PresentationDefinition: testPD,
	}))

	ro, err := AssembleRequestObject(cfg, testNow, p)
	require.NoError(t, err)

	raw, err := json.Marshal(ro)
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(raw, &claims))

	assert.Equal(t, "verifier", claims["iss"])
	assert.Equal(t, []any{SelfIssuedAudience}, claims["aud"])
	assert.Equal(t, "vp_token id_token", claims["response_type"])
	assert.Equal(t, "openid", claims["scope"])
	assert.Equal(t, "subject_signed_id_token", claims["id_token_type"])
	assert.Equal(t, float64(testNow.Unix()), claims["iat"])
	assert.Contains(t, claims, "presentation_definition")
	assert.NotContains(t, claims, "presentation_definition_uri")
	assert.Contains(t, claims, "client_metadata")
}

func TestRequestObject_MarshalJSON_IDTokenOnlyHasEmptyAudience(t *testing.T) {
	cfg := newTestConfig(t)
	p := newRequested(t, withType(domain.IDTokenRequest{
		IDTokenTypes: []domain.IDTokenType{domain.IDTokenTypeSubjectSigned},
	}))

	ro, err := AssembleRequestObject(cfg, testNow, p)
	require.NoError(t, err)

	raw, err := json.Marshal(ro)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"aud":[]`)

	ro.Audience = nil
	raw, err = json.Marshal(ro)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"aud":[]`)
}
