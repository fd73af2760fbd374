package oid4vp

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestObjectSigner_PreRegisteredUsesKid(t *testing.T) {
	cfg := newTestConfig(t)
	signer := NewRequestObjectSigner()

	jwt, err := signer.Sign(cfg, testNow, newRequested(t))
	require.NoError(t, err)
	require.True(t, crypto.IsCompactJWS(jwt))

	hdrs, err := crypto.ParseProtectedHeaders(jwt)
	require.NoError(t, err)

	typ, _ := hdrs.Type()
	assert.Equal(t, RequestObjectType, typ)

	kid, ok := hdrs.KeyID()
	require.True(t, ok)
	wantKid, _ := cfg.ClientIDScheme.Identity().JarSigning.Key.KeyID()
	assert.Equal(t, wantKid, kid)

	assert.True(t, hdrs.Has(jws.KeyIDKey))
	assert.False(t, hdrs.Has(jws.X509CertChainKey))

	pub, err := crypto.PublicKey(cfg.ClientIDScheme.Identity().JarSigning.Key)
	require.NoError(t, err)
	payload, err := crypto.VerifyCompactWithKey(jwt, pub, "ES256")
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, "req-1", claims["state"])
	assert.Equal(t, "nonce-1", claims["nonce"])
}

func TestRequestObjectSigner_X509SchemeUsesX5c(t *testing.T) {
	key := newSigningKey(t)
	clientURI, _ := url.Parse("https://verifier.example.com")
	pemData, err := crypto.GenerateSelfSignedCertificate(key, "verifier.example.com",
		[]string{"verifier.example.com"}, []*url.URL{clientURI}, 24*time.Hour)
	require.NoError(t, err)
	certs, err := crypto.ParseCertificateChain(pemData)
	require.NoError(t, err)
	require.NoError(t, crypto.AttachCertChain(key, certs))

	identity := domain.ClientIdentity{
		ClientID:   "verifier.example.com",
		JarSigning: domain.SigningConfig{Key: key, Algorithm: "ES256"},
	}

	tests := []struct {
		name   string
		scheme domain.ClientIDScheme
	}{
		{"x509_san_dns", domain.X509SanDNS{ClientIdentity: identity}},
		{"x509_san_uri", domain.X509SanURI{ClientIdentity: identity}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.ClientIDScheme = tt.scheme

			jwt, err := NewRequestObjectSigner().Sign(cfg, testNow, newRequested(t))
			require.NoError(t, err)

			hdrs, err := crypto.ParseProtectedHeaders(jwt)
			require.NoError(t, err)

			require.True(t, hdrs.Has(jws.X509CertChainKey))
			chain, _ := hdrs.X509CertChain()
			assert.Equal(t, 1, chain.Len())
			assert.False(t, hdrs.Has(jws.KeyIDKey))

			payload, err := crypto.VerifyCompactWithKey(jwt, mustPublic(t, key), "ES256")
			require.NoError(t, err)
			assert.Contains(t, string(payload), `"client_id_scheme":"`+tt.name+`"`)
		})
	}
}

func TestRequestObjectSigner_CanonicalPayload(t *testing.T) {
	cfg := newTestConfig(t)

	jwt, err := NewRequestObjectSigner().Sign(cfg, testNow, newRequested(t))
	require.NoError(t, err)

	payload, err := crypto.VerifyCompactWithKey(jwt, mustPublic(t, cfg.ClientIDScheme.Identity().JarSigning.Key), "ES256")
	require.NoError(t, err)

	canonical, err := crypto.CanonicalizeJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, string(canonical), string(payload))
}

func TestRequestObjectSigner_MissingKey(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.ClientIDScheme = domain.PreRegistered{ClientIdentity: domain.ClientIdentity{ClientID: "verifier"}}

	_, err := NewRequestObjectSigner().Sign(cfg, testNow, newRequested(t))
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeMisconfiguration))
}
