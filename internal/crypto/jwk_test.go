package crypto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

func TestPublicJWKSet_StripsPrivateComponents(t *testing.T) {
	tests := []struct {
		name       string
		newKey     func(t *testing.T) jwk.Key
		privFields []string
	}{
		{"ephemeral EC key", func(t *testing.T) jwk.Key {
			k, err := GenerateEphemeralEncryptionKey("ECDH-ES")
			if err != nil {
				t.Fatalf("GenerateEphemeralEncryptionKey: %v", err)
			}
			return k
		}, []string{`"d"`}},
		{"RSA signing key", func(t *testing.T) jwk.Key {
			k, err := GenerateSigningKey("RS256", 2048)
			if err != nil {
				t.Fatalf("GenerateSigningKey: %v", err)
			}
			return k
		}, []string{`"d"`, `"p"`, `"q"`, `"dp"`, `"dq"`, `"qi"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := tt.newKey(t)
			set, err := PublicJWKSet(key)
			if err != nil {
				t.Fatalf("PublicJWKSet: %v", err)
			}
			if set.Len() != 1 {
				t.Fatalf("set has %d keys, want 1", set.Len())
			}

			data, err := json.Marshal(set)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			for _, field := range tt.privFields {
				if strings.Contains(string(data), field) {
					t.Errorf("public set contains private field %s: %s", field, data)
				}
			}

			pub, _ := set.Key(0)
			gotKid, _ := pub.KeyID()
			wantKid, _ := key.KeyID()
			if gotKid != wantKid {
				t.Errorf("kid = %q, want %q", gotKid, wantKid)
			}
			if RequirePrivateKey(pub) == nil {
				t.Error("public projection should not be usable as a private key")
			}
		})
	}
}

func TestGenerateKeyID(t *testing.T) {
	key, err := GenerateSigningKey("ES256", 0)
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}

	kid, err := GenerateKeyID(key)
	if err != nil {
		t.Fatalf("GenerateKeyID: %v", err)
	}
	if len(kid) != 16 {
		t.Errorf("kid length = %d, want 16", len(kid))
	}

	pub, err := PublicKey(key)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	pubKid, err := GenerateKeyID(pub)
	if err != nil {
		t.Fatalf("GenerateKeyID(pub): %v", err)
	}
	if kid != pubKid {
		t.Errorf("private and public key ids differ: %s != %s", kid, pubKid)
	}

	if _, err := GenerateKeyID(nil); err == nil {
		t.Error("expected error for nil key")
	}
}
