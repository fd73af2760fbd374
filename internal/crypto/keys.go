// this file contains functions to generate, save and load keys
//
// Request object signing keys are long lived and kept in JWK files (see cmd/keygen).
// JARM encryption keys are ephemeral: one is minted per transaction, held only on that
// transaction's presentation record and never written to disk.

package crypto

import (
	gocrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// ephemeralRSAKeySize is used when the JARM key encryption algorithm is RSA-OAEP-256.
const ephemeralRSAKeySize = 2048

// GenerateSigningKey generates a private JWK suitable for signing with alg.
// The key has alg, use=sig and a thumbprint kid (see GenerateKeyID).
func GenerateSigningKey(alg string, rsaBits int) (jwk.Key, error) {
	signatureAlg, err := SignatureAlgorithm(alg)
	if err != nil {
		return nil, err
	}

	var raw any
	switch alg {
	case "ES256":
		raw, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case "ES384":
		raw, err = ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	case "EdDSA":
		_, raw, err = ed25519.GenerateKey(rand.Reader)
	case "RS256":
		if rsaBits != 2048 && rsaBits != 4096 {
			return nil, NewValidationError(fmt.Sprintf("invalid RSA key size: %d (must be 2048 or 4096)", rsaBits))
		}
		raw, err = rsa.GenerateKey(rand.Reader, rsaBits)
	}
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to generate key pair")
	}

	key, err := jwk.Import(raw)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to import key")
	}
	if err := key.Set(jwk.AlgorithmKey, signatureAlg); err != nil {
		return nil, WrapInternalError(err, "failed to set alg")
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, WrapInternalError(err, "failed to set use")
	}
	kid, err := GenerateKeyID(key)
	if err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		return nil, WrapInternalError(err, "failed to set kid")
	}
	return key, nil
}

// GenerateEphemeralEncryptionKey mints the per-transaction JARM decryption key.
//
// ECDH-ES algorithms get a P-256 key, RSA-OAEP-256 gets an RSA key. The key carries
// alg, use=enc and a random kid, so two calls never produce the same key identifier.
func GenerateEphemeralEncryptionKey(alg string) (jwk.Key, error) {
	keyAlg, err := KeyEncryptionAlgorithm(alg)
	if err != nil {
		return nil, err
	}

	var raw any
	if isECDHES(alg) {
		raw, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	} else {
		raw, err = rsa.GenerateKey(rand.Reader, ephemeralRSAKeySize)
	}
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to generate ephemeral key pair")
	}

	key, err := jwk.Import(raw)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to import ephemeral key")
	}
	if err := key.Set(jwk.KeyIDKey, uuid.NewString()); err != nil {
		return nil, WrapInternalError(err, "failed to set kid")
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForEncryption); err != nil {
		return nil, WrapInternalError(err, "failed to set use")
	}
	if err := key.Set(jwk.AlgorithmKey, keyAlg); err != nil {
		return nil, WrapInternalError(err, "failed to set alg")
	}
	return key, nil
}

// RequirePrivateKey returns an error unless key holds private key material usable for signing or decryption.
func RequirePrivateKey(key jwk.Key) error {
	if key == nil {
		return NewKeyManagementError("key is nil")
	}
	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return WrapKeyManagementError(err, "failed to export key")
	}
	switch raw.(type) {
	case *ecdsa.PrivateKey, *rsa.PrivateKey, ed25519.PrivateKey:
		return nil
	default:
		return NewKeyManagementError(fmt.Sprintf("expected a private key, got %T", raw))
	}
}

// exportSigner returns the raw private key behind a JWK.
func exportSigner(key jwk.Key) (gocrypto.Signer, error) {
	if err := RequirePrivateKey(key); err != nil {
		return nil, err
	}
	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, WrapKeyManagementError(err, "failed to export key")
	}
	switch k := raw.(type) {
	case *ecdsa.PrivateKey:
		return k, nil
	case *rsa.PrivateKey:
		return k, nil
	case ed25519.PrivateKey:
		return k, nil
	default:
		return nil, NewKeyManagementError(fmt.Sprintf("unsupported private key type %T", raw))
	}
}

// SaveJWKSetToFile writes the keys as a JWK set
// note private keys are not encrypted
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "verifier.private.jwk")
func SaveJWKSetToFile(baseDir, filename string, keys ...jwk.Key) error {
	jwkSet := jwk.NewSet()
	for _, key := range keys {
		if err := jwkSet.AddKey(key); err != nil {
			return WrapKeyManagementError(err, "failed to add key to set")
		}
	}

	jsonBytes, err := json.MarshalIndent(jwkSet, "", "  ")
	if err != nil {
		return WrapInternalError(err, "failed to marshal JWK set")
	}

	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return WrapInternalError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	if err := root.WriteFile(filename, jsonBytes, 0600); err != nil {
		return WrapInternalError(err, "failed to write file")
	}

	return nil
}

// ReadSigningKeyFromJWKFile loads a private signing key from a file holding either a single JWK or a JWK set.
// When the file holds a set, the first private key is returned.
//
// Parameters:
//   - path: The file path (e.g., "./keys/verifier.private.jwk")
func ReadSigningKeyFromJWKFile(path string) (jwk.Key, error) {
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, WrapInternalError(err, fmt.Sprintf("failed to open directory %s", filepath.Dir(path)))
	}
	defer root.Close()

	data, err := root.ReadFile(filepath.Base(path))
	if err != nil {
		return nil, WrapInternalError(err, fmt.Sprintf("failed to read %s", path))
	}

	return ParseSigningKey(data)
}

// ParseSigningKey parses a single JWK or a JWK set and returns its first private key.
func ParseSigningKey(data []byte) (jwk.Key, error) {
	keySet, err := jwk.Parse(data)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to parse JWK")
	}

	for i := range keySet.Len() {
		key, ok := keySet.Key(i)
		if !ok {
			continue
		}
		if RequirePrivateKey(key) == nil {
			return key, nil
		}
	}
	return nil, NewKeyManagementError("no private key found in JWK data")
}
