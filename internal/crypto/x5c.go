// x5c.go - certificate chain handling for the x509_san_dns and x509_san_uri client id schemes.
//
// For these schemes the wallet authenticates the verifier from the certificate chain sent in the
// request object's x5c header: the leaf certificate must carry the public key of the signing key
// and a SAN matching the client_id.
package crypto

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/lestrrat-go/jwx/v3/cert"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// ParseCertificateChain parses a PEM encoded certificate chain (leaf first).
//
// Non-certificate blocks are skipped. An error is returned if no certificates are found.
func ParseCertificateChain(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	var block *pem.Block
	remaining := pemData

	for {
		block, remaining = pem.Decode(remaining)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, WrapCertificateError(err, "failed to parse certificate")
		}
		certs = append(certs, c)
	}

	if len(certs) == 0 {
		return nil, NewValidationError("no certificates found in PEM data")
	}
	return certs, nil
}

// ReadCertChainFromPEMFile loads a certificate chain from a PEM file.
//
// Parameters:
//   - path: The file path (e.g., "./keys/verifier.crt")
func ReadCertChainFromPEMFile(path string) ([]*x509.Certificate, error) {
	dir := filepath.Dir(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, WrapInternalError(err, fmt.Sprintf("failed to open directory %s", dir))
	}
	defer root.Close()

	pemData, err := root.ReadFile(filepath.Base(path))
	if err != nil {
		return nil, WrapInternalError(err, fmt.Sprintf("failed to read %s", path))
	}

	return ParseCertificateChain(pemData)
}

// CertChainToX5C converts an X.509 certificate chain to the x5c format:
// an array of base64 (standard, padded) encoded DER certificates.
func CertChainToX5C(certChain []*x509.Certificate) []string {
	x5c := make([]string, len(certChain))
	for i, c := range certChain {
		x5c[i] = base64.StdEncoding.EncodeToString(c.Raw)
	}
	return x5c
}

// AttachCertChain validates that the leaf certificate matches key and stores the chain on the key (x5c member).
func AttachCertChain(key jwk.Key, certChain []*x509.Certificate) error {
	if err := ValidateX5CMatchesKey(certChain, key); err != nil {
		return err
	}

	var chain cert.Chain
	for _, b64 := range CertChainToX5C(certChain) {
		if err := chain.AddString(b64); err != nil {
			return WrapCertificateError(err, "failed to add certificate to chain")
		}
	}
	if err := key.Set(jwk.X509CertChainKey, &chain); err != nil {
		return WrapInternalError(err, "failed to set x5c")
	}
	return nil
}

// ValidateX5CMatchesKey checks that the leaf certificate's public key is the public part of key.
func ValidateX5CMatchesKey(certChain []*x509.Certificate, key jwk.Key) error {
	if len(certChain) == 0 {
		return NewCertificateError("empty certificate chain")
	}

	pub, err := PublicKey(key)
	if err != nil {
		return err
	}
	leaf, err := jwk.Import(certChain[0].PublicKey)
	if err != nil {
		return WrapCertificateError(err, "unsupported public key in leaf certificate")
	}

	want, err := GenerateKeyID(pub)
	if err != nil {
		return err
	}
	got, err := GenerateKeyID(leaf)
	if err != nil {
		return err
	}
	if got != want {
		return NewCertificateError("x5c leaf certificate public key does not match the signing key")
	}
	return nil
}

// ValidateClientIDInSAN checks that the leaf certificate carries clientID as a DNS or URI SAN.
func ValidateClientIDInSAN(leaf *x509.Certificate, clientID string, uriSAN bool) error {
	if uriSAN {
		for _, u := range leaf.URIs {
			if u.String() == clientID {
				return nil
			}
		}
		return NewCertificateError(fmt.Sprintf("client id %q is not a URI SAN of the leaf certificate", clientID))
	}
	if !slices.Contains(leaf.DNSNames, clientID) {
		return NewCertificateError(fmt.Sprintf("client id %q is not a DNS SAN of the leaf certificate", clientID))
	}
	return nil
}

// GenerateSelfSignedCertificate creates a self-signed PEM certificate for key with the given SANs.
// It is intended for development and testing of the x509 client id schemes.
func GenerateSelfSignedCertificate(key jwk.Key, commonName string, dnsNames []string, uris []*url.URL, validity time.Duration) ([]byte, error) {
	signer, err := exportSigner(key)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, WrapInternalError(err, "failed to generate serial number")
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		URIs:                  uris,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	if err != nil {
		return nil, WrapCertificateError(err, "failed to create certificate")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), nil
}
