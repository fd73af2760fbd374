package crypto

import (
	gocrypto "crypto"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// PublicKey returns the public portion of key. Private components are never copied.
func PublicKey(key jwk.Key) (jwk.Key, error) {
	if key == nil {
		return nil, NewKeyManagementError("key is nil")
	}
	pub, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to derive public key")
	}
	return pub, nil
}

// PublicJWKSet returns a JWK set holding the public portion of each key.
func PublicJWKSet(keys ...jwk.Key) (jwk.Set, error) {
	set := jwk.NewSet()
	for _, key := range keys {
		pub, err := PublicKey(key)
		if err != nil {
			return nil, err
		}
		if err := set.AddKey(pub); err != nil {
			return nil, WrapKeyManagementError(err, "failed to add key to set")
		}
	}
	return set, nil
}

// GenerateKeyID returns the first 16 characters of the hex-encoded SHA-256 thumbprint (RFC 7638) of key.
func GenerateKeyID(key jwk.Key) (string, error) {
	if key == nil {
		return "", NewKeyManagementError("key is nil")
	}
	pub, err := PublicKey(key)
	if err != nil {
		return "", err
	}
	thumbprint, err := pub.Thumbprint(gocrypto.SHA256)
	if err != nil {
		return "", WrapKeyManagementError(err, "failed to generate thumbprint")
	}
	return fmt.Sprintf("%x", thumbprint)[:16], nil
}

// ParseJWK parses a single JWK (private or public).
func ParseJWK(data []byte) (jwk.Key, error) {
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to parse JWK")
	}
	return key, nil
}
