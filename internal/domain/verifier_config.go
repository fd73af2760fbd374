package domain

import (
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// SigningConfig is the static key used to sign request objects.
//
// Key is a private JWK. Its kid and x5c (if any) decide the JWS header, see ClientIDScheme.
type SigningConfig struct {
	Key       jwk.Key
	Algorithm string
}

// ClientIdentity is common to every client id scheme.
type ClientIdentity struct {
	ClientID   string
	JarSigning SigningConfig
}

func (c ClientIdentity) Identity() ClientIdentity { return c }

// ClientIDScheme is one of PreRegistered, X509SanDNS or X509SanURI.
//
// Pre-registered clients identify the signing key with a kid header; the X.509 SAN
// variants send the certificate chain in an x5c header instead.
type ClientIDScheme interface {
	Identity() ClientIdentity
	SchemeName() string
}

type PreRegistered struct{ ClientIdentity }
type X509SanDNS struct{ ClientIdentity }
type X509SanURI struct{ ClientIdentity }

func (PreRegistered) SchemeName() string { return "pre-registered" }
func (X509SanDNS) SchemeName() string    { return "x509_san_dns" }
func (X509SanURI) SchemeName() string    { return "x509_san_uri" }

// ClientMetaData is published to the wallet in the request object's client_metadata.
type ClientMetaData struct {
	JWKOption                   EmbedOption
	IDTokenSignedResponseAlg    string
	IDTokenEncryptedResponseAlg string
	IDTokenEncryptedResponseEnc string
	SubjectSyntaxTypesSupported []string
	JarmOption                  JarmOption
}

// VerifierConfig is built once at startup and never modified.
type VerifierConfig struct {
	ClientIDScheme               ClientIDScheme
	JarOption                    EmbedOption
	PresentationDefinitionOption EmbedOption
	ResponseModeOption           ResponseMode
	ResponseURLBuilder           URLBuilder
	MaxAge                       time.Duration
	ClientMetaData               ClientMetaData
}
