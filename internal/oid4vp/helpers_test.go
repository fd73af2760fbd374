package oid4vp

import (
	"testing"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var testPD = domain.PresentationDefinition{
	ID: "pd-1",
	InputDescriptors: []domain.InputDescriptor{
		{ID: "pid", Constraints: []byte(`{"fields":[{"path":["$.vct"]}]}`)},
	},
}

var testJarm = domain.JarmEncrypted{Algorithm: "ECDH-ES", Encode: "A128CBC-HS256"}

func newSigningKey(t *testing.T) jwk.Key {
	t.Helper()
	key, err := crypto.GenerateSigningKey("ES256", 0)
	require.NoError(t, err)
	return key
}

func newTestConfig(t *testing.T) domain.VerifierConfig {
	t.Helper()
	return domain.VerifierConfig{
		ClientIDScheme: domain.PreRegistered{ClientIdentity: domain.ClientIdentity{
			ClientID:   "verifier",
			JarSigning: domain.SigningConfig{Key: newSigningKey(t), Algorithm: "ES256"},
		}},
		JarOption:                    domain.ByValue{},
		PresentationDefinitionOption: domain.ByValue{},
		ResponseModeOption:           domain.ResponseModeDirectPost,
		ResponseURLBuilder:           domain.FixedURL("https://verifier.example.com/wallet/direct_post"),
		MaxAge:                       6 * time.Minute,
		ClientMetaData: domain.ClientMetaData{
			JWKOption:                   domain.ByValue{},
			IDTokenSignedResponseAlg:    "RS256",
			IDTokenEncryptedResponseAlg: "RSA-OAEP-256",
			IDTokenEncryptedResponseEnc: "A128CBC-HS256",
			SubjectSyntaxTypesSupported: []string{"urn:ietf:params:oauth:jwk-thumbprint"},
			JarmOption:                  testJarm,
		},
	}
}

type requestedOption func(*domain.Base)

func withType(pt domain.PresentationType) requestedOption {
	return func(b *domain.Base) { b.Type = pt }
}

func withPDMode(m domain.EmbedOption) requestedOption {
	return func(b *domain.Base) { b.PresentationDefinitionMode = m }
}

func withJwtResponseMode(t *testing.T) requestedOption {
	return func(b *domain.Base) {
		key, err := crypto.GenerateEphemeralEncryptionKey(testJarm.Algorithm)
		require.NoError(t, err)
		b.ResponseMode = domain.ResponseModeDirectPostJwt
		b.EphemeralKey = key
	}
}

func newRequested(t *testing.T, opts ...requestedOption) domain.Requested {
	t.Helper()
	base := domain.Base{
		ID:                         "tx-1",
		InitiatedAt:                testNow,
		Type:                       domain.VPTokenRequest{PresentationDefinition: testPD},
		RequestID:                  "req-1",
		Nonce:                      "nonce-1",
		ResponseMode:               domain.ResponseModeDirectPost,
		PresentationDefinitionMode: domain.ByValue{},
		GetWalletResponseMethod:    domain.Poll{},
	}
	for _, opt := range opts {
		opt(&base)
	}
	p, err := domain.NewRequested(base)
	require.NoError(t, err)
	return p
}

func mustPublic(t *testing.T, key jwk.Key) jwk.Key {
	t.Helper()
	pub, err := crypto.PublicKey(key)
	require.NoError(t, err)
	return pub
}
