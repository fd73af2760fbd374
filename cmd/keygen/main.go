// keygen is a CLI tool for generating verifier signing keys (and optional self-signed certificates)
// for testing and manual key configuration.
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/spf13/cobra"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/version"
)

// file naming convention - name.public.jwk, name.private.jwk and name.cert.pem
const (
	publicKeyFileNameFormat  = "%s.public.jwk"
	privateKeyFileNameFormat = "%s.private.jwk"
	certFileNameFormat       = "%s.cert.pem"
)

var (
	name         string
	outputDir    string
	alg          string
	rsaSize      int
	kid          string
	certDNS      []string
	certURIs     []string
	certValidity time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "keygen",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "JWK key generator for verifier-server",
		Long:              "Generate ES256, ES384, EdDSA or RS256 signing keys in JWK format for the request object signer",
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair",
		Long: `Generate a new signing key pair in JWK format.

When --cert-dns or --cert-uri is given a self-signed certificate carrying those SANs is written
next to the keys, for use with CLIENT_ID_SCHEME=x509_san_dns or x509_san_uri.`,
		RunE: runGenerate,
	}

	generateCmd.Flags().StringVarP(&name, "name", "n", "", "Base file name (e.g., verifier) [required]")
	generateCmd.Flags().StringVarP(&alg, "alg", "a", "ES256", "Signing algorithm: ES256, ES384, EdDSA or RS256")
	generateCmd.Flags().StringVarP(&outputDir, "outputdir", "o", "", "Output directory for generated keys [required]")
	generateCmd.Flags().IntVarP(&rsaSize, "size", "s", 2048, "RSA key size in bits (2048 or 4096)")
	generateCmd.Flags().StringVarP(&kid, "kid", "k", "", "Key ID (default: JWK thumbprint)")
	generateCmd.Flags().StringSliceVar(&certDNS, "cert-dns", nil, "DNS SAN of the self-signed certificate (repeatable)")
	generateCmd.Flags().StringSliceVar(&certURIs, "cert-uri", nil, "URI SAN of the self-signed certificate (repeatable)")
	generateCmd.Flags().DurationVar(&certValidity, "cert-validity", 365*24*time.Hour, "Validity of the self-signed certificate")
	generateCmd.MarkFlagRequired("name")
	generateCmd.MarkFlagRequired("outputdir")

	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	uris := make([]*url.URL, 0, len(certURIs))
	for _, raw := range certURIs {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("invalid --cert-uri %q: must be an absolute URI", raw)
		}
		uris = append(uris, u)
	}

	// make the directory if it doesn't exist
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	fmt.Printf("Generating %s key pair: %s\n", alg, name)

	privateKey, err := crypto.GenerateSigningKey(alg, rsaSize)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	if kid != "" {
		if err := privateKey.Set(jwk.KeyIDKey, kid); err != nil {
			return fmt.Errorf("failed to set key ID: %w", err)
		}
	}
	keyID, _ := privateKey.KeyID()

	publicKey, err := crypto.PublicKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to derive public key: %w", err)
	}

	publicFile := fmt.Sprintf(publicKeyFileNameFormat, name)
	if err := crypto.SaveJWKSetToFile(outputDir, publicFile, publicKey); err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}
	fmt.Printf("✓ Public JWK:  %s (kid: %s)\n", filepath.Join(outputDir, publicFile), keyID)

	privateFile := fmt.Sprintf(privateKeyFileNameFormat, name)
	if err := crypto.SaveJWKSetToFile(outputDir, privateFile, privateKey); err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}
	fmt.Printf("✓ Private JWK: %s (kid: %s)\n", filepath.Join(outputDir, privateFile), keyID)

	if len(certDNS) == 0 && len(uris) == 0 {
		return nil
	}

	pemData, err := crypto.GenerateSelfSignedCertificate(privateKey, name, certDNS, uris, certValidity)
	if err != nil {
		return fmt.Errorf("failed to generate certificate: %w", err)
	}
	certPath := filepath.Join(outputDir, fmt.Sprintf(certFileNameFormat, name))
	if err := os.WriteFile(certPath, pemData, 0644); err != nil {
		return fmt.Errorf("failed to save certificate: %w", err)
	}
	fmt.Printf("✓ Certificate: %s (valid %s)\n", certPath, certValidity)

	return nil
}
