// jwe.go - Functions for JWE (JSON Web Encryption) in compact serialization.
//
// The verifier only ever decrypts: wallets encrypt JARM responses to the per-transaction
// ephemeral public key published in client_metadata. Encrypt exists for wallet simulation and tests.
package crypto

import (
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwe"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Decrypt decrypts a compact JWE with the private key and checks it used the expected alg and enc.
func Decrypt(token string, key jwk.Key, alg, enc string) ([]byte, error) {
	keyAlg, err := KeyEncryptionAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	if _, err := ContentEncryptionAlgorithm(enc); err != nil {
		return nil, err
	}
	if !IsCompactJWE(token) {
		return nil, NewDecryptionError("invalid JWE format")
	}
	if err := RequirePrivateKey(key); err != nil {
		return nil, err
	}

	msg, err := jwe.Parse([]byte(token))
	if err != nil {
		return nil, WrapDecryptionError(err, "failed to parse JWE")
	}
	if got, ok := msg.ProtectedHeaders().ContentEncryption(); !ok || got.String() != enc {
		return nil, NewDecryptionError(fmt.Sprintf("unexpected content encryption %q (want %s)", got.String(), enc))
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, WrapKeyManagementError(err, "failed to export decryption key")
	}

	plaintext, err := jwe.Decrypt([]byte(token), jwe.WithKey(keyAlg, raw))
	if err != nil {
		return nil, WrapDecryptionError(err, "failed to decrypt JWE")
	}
	return plaintext, nil
}

// Encrypt encrypts payload to the public part of key and returns the compact serialization.
func Encrypt(payload []byte, key jwk.Key, alg, enc string) (string, error) {
	keyAlg, err := KeyEncryptionAlgorithm(alg)
	if err != nil {
		return "", err
	}
	contentAlg, err := ContentEncryptionAlgorithm(enc)
	if err != nil {
		return "", err
	}
	pub, err := PublicKey(key)
	if err != nil {
		return "", err
	}

	encrypted, err := jwe.Encrypt(payload, jwe.WithKey(keyAlg, pub), jwe.WithContentEncryption(contentAlg))
	if err != nil {
		return "", WrapInternalError(err, "failed to encrypt payload")
	}
	return string(encrypted), nil
}
