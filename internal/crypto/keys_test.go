package crypto

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateSigningKey(t *testing.T) {
	tests := []struct {
		name    string
		alg     string
		rsaBits int
		wantErr bool
	}{
		{"ES256", "ES256", 0, false},
		{"ES384", "ES384", 0, false},
		{"EdDSA", "EdDSA", 0, false},
		{"RS256", "RS256", 2048, false},
		{"RS256 bad size", "RS256", 1024, true},
		{"HS256 not supported", "HS256", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := GenerateSigningKey(tt.alg, tt.rsaBits)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := RequirePrivateKey(key); err != nil {
				t.Errorf("RequirePrivateKey: %v", err)
			}
			alg, ok := key.Algorithm()
			if !ok || alg.String() != tt.alg {
				t.Errorf("alg = %v, want %s", alg, tt.alg)
			}
			if kid, ok := key.KeyID(); !ok || len(kid) != 16 {
				t.Errorf("kid = %q, want 16 character thumbprint", kid)
			}
		})
	}
}

func TestSaveAndReadSigningKey(t *testing.T) {
	dir := t.TempDir()

	key, err := GenerateSigningKey("ES256", 0)
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}
	pub, err := PublicKey(key)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}

	if err := SaveJWKSetToFile(dir, "verifier.private.jwk", key); err != nil {
		t.Fatalf("SaveJWKSetToFile: %v", err)
	}
	if err := SaveJWKSetToFile(dir, "verifier.public.jwk", pub); err != nil {
		t.Fatalf("SaveJWKSetToFile: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "verifier.private.jwk"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("private key file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := ReadSigningKeyFromJWKFile(filepath.Join(dir, "verifier.private.jwk"))
	if err != nil {
		t.Fatalf("ReadSigningKeyFromJWKFile: %v", err)
	}
	wantKid, _ := key.KeyID()
	if gotKid, _ := loaded.KeyID(); gotKid != wantKid {
		t.Errorf("kid = %q, want %q", gotKid, wantKid)
	}

	if _, err := ReadSigningKeyFromJWKFile(filepath.Join(dir, "verifier.public.jwk")); err == nil {
		t.Error("expected error when the file holds only a public key")
	}
	if _, err := ReadSigningKeyFromJWKFile(filepath.Join(dir, "missing.jwk")); err == nil {
		t.Error("expected error for a missing file")
	}
}
