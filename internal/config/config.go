package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/database"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/oid4vp"
)

// Paths under PUBLIC_URL at which the wallet-facing endpoints are mounted.
const (
	RequestObjectPath          = "/wallet/request.jwt/" + domain.RequestIDPlaceholder
	PresentationDefinitionPath = "/wallet/pd/" + domain.RequestIDPlaceholder
	JarmJWKSPath               = "/wallet/jarm/" + domain.RequestIDPlaceholder + "/jwks.json"
	DirectPostPath             = "/wallet/direct_post"
)

// Environment variables with defaults
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	PublicURL             string        `env:"PUBLIC_URL,default=http://localhost:8080"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	MaxRequestSize        int64         `env:"MAX_REQUEST_SIZE,default=1048576"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`

	// verifier identity and request object signing
	ClientID             string `env:"CLIENT_ID,required=true"`
	ClientIDScheme       string `env:"CLIENT_ID_SCHEME,default=pre-registered"`
	SigningKeyPath       string `env:"SIGNING_KEY_PATH,required=true"`
	SigningAlg           string `env:"SIGNING_ALG,default=ES256"`
	SigningCertChainPath string `env:"SIGNING_CERT_CHAIN_PATH"`

	// presentation defaults
	JarMode                    string        `env:"JAR_MODE,default=by_value"`
	PresentationDefinitionMode string        `env:"PRESENTATION_DEFINITION_MODE,default=by_value"`
	ResponseMode               string        `env:"RESPONSE_MODE,default=direct_post"`
	JWKSMode                   string        `env:"JWKS_MODE,default=by_value"`
	MaxAge                     time.Duration `env:"MAX_AGE,default=6m"`
	TimeoutSweepInterval       time.Duration `env:"TIMEOUT_SWEEP_INTERVAL,default=1m"`

	// JARM
	JarmOption string `env:"JARM_OPTION,default=encrypted"`
	JarmJWSAlg string `env:"JARM_JWS_ALG,default=ES256"`
	JarmJWEAlg string `env:"JARM_JWE_ALG,default=ECDH-ES"`
	JarmJWEEnc string `env:"JARM_JWE_ENC,default=A128CBC-HS256"`

	// client metadata
	IDTokenSignedResponseAlg    string   `env:"ID_TOKEN_SIGNED_RESPONSE_ALG,default=RS256"`
	IDTokenEncryptedResponseAlg string   `env:"ID_TOKEN_ENCRYPTED_RESPONSE_ALG,default=RSA-OAEP-256"`
	IDTokenEncryptedResponseEnc string   `env:"ID_TOKEN_ENCRYPTED_RESPONSE_ENC,default=A128CBC-HS256"`
	SubjectSyntaxTypesSupported []string `env:"SUBJECT_SYNTAX_TYPES_SUPPORTED,default=urn:ietf:params:oauth:jwk-thumbprint,separator=|"`

	// wallet keys for signed JARM responses
	WalletJWKSURL      string        `env:"WALLET_JWKS_URL"`
	WalletKeysDir      string        `env:"WALLET_KEYS_DIR"`
	JWKCacheMinRefresh time.Duration `env:"JWK_CACHE_MIN_REFRESH,default=15m"`
	JWKCacheMaxRefresh time.Duration `env:"JWK_CACHE_MAX_REFRESH,default=24h"`

	// database settings - an empty DATABASE_URL selects the in-memory store
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS,default=4"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS,default=0"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME,default=60m"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME,default=30m"`
	DBConnectTimeout    time.Duration `env:"DB_CONNECT_TIMEOUT,default=5s"`
	DatabasePingTimeout time.Duration `env:"DATABASE_PING_TIMEOUT,default=10s"`
	DBRunMigrations     bool          `env:"DB_RUN_MIGRATIONS,default=true"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// Client id scheme names accepted in CLIENT_ID_SCHEME.
const (
	SchemePreRegistered = "pre-registered"
	SchemeX509SanDNS    = "x509_san_dns"
	SchemeX509SanURI    = "x509_san_uri"
)

// JARM option names accepted in JARM_OPTION.
const (
	JarmOptionSigned             = "signed"
	JarmOptionEncrypted          = "encrypted"
	JarmOptionSignedAndEncrypted = "signed_and_encrypted"
)

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig checks the values that cannot be expressed as env tags
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if u, err := url.Parse(cfg.PublicURL); err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("PUBLIC_URL must be an absolute URL, got %q", cfg.PublicURL)
	}
	if cfg.MaxRequestSize < 1 {
		return fmt.Errorf("MAX_REQUEST_SIZE must be at least 1")
	}

	if strings.TrimSpace(cfg.ClientID) == "" {
		return fmt.Errorf("CLIENT_ID is required")
	}
	switch cfg.ClientIDScheme {
	case SchemePreRegistered:
	case SchemeX509SanDNS, SchemeX509SanURI:
		if cfg.SigningCertChainPath == "" {
			return fmt.Errorf("SIGNING_CERT_CHAIN_PATH is required for CLIENT_ID_SCHEME %s", cfg.ClientIDScheme)
		}
	default:
		return fmt.Errorf("invalid CLIENT_ID_SCHEME: %s", cfg.ClientIDScheme)
	}
	if _, err := crypto.SignatureAlgorithm(cfg.SigningAlg); err != nil {
		return fmt.Errorf("invalid SIGNING_ALG: %w", err)
	}

	for name, value := range map[string]string{
		"JAR_MODE":                     cfg.JarMode,
		"PRESENTATION_DEFINITION_MODE": cfg.PresentationDefinitionMode,
		"JWKS_MODE":                    cfg.JWKSMode,
	} {
		if value != domain.EmbedModeByValue && value != domain.EmbedModeByReference {
			return fmt.Errorf("%s must be %s or %s, got %q", name, domain.EmbedModeByValue, domain.EmbedModeByReference, value)
		}
	}
	if _, err := domain.ParseResponseMode(cfg.ResponseMode); err != nil {
		return fmt.Errorf("invalid RESPONSE_MODE: %w", err)
	}
	if cfg.MaxAge <= 0 {
		return fmt.Errorf("MAX_AGE must be positive")
	}
	if cfg.TimeoutSweepInterval <= 0 {
		return fmt.Errorf("TIMEOUT_SWEEP_INTERVAL must be positive")
	}

	jarm, err := cfg.jarmOption()
	if err != nil {
		return err
	}
	if _, err := oid4vp.EphemeralKeyRequired(domain.ResponseMode(cfg.ResponseMode), jarm); err != nil {
		return fmt.Errorf("RESPONSE_MODE %s cannot be served with JARM_OPTION %s: %w", cfg.ResponseMode, cfg.JarmOption, err)
	}

	if cfg.JWKCacheMinRefresh > cfg.JWKCacheMaxRefresh {
		return fmt.Errorf("JWK_CACHE_MIN_REFRESH (%s) cannot be greater than JWK_CACHE_MAX_REFRESH (%s)",
			cfg.JWKCacheMinRefresh, cfg.JWKCacheMaxRefresh)
	}

	// Validate database pool configuration
	if cfg.DBMaxConnections < 1 {
		return fmt.Errorf("DB_MAX_CONNECTIONS must be at least 1")
	}
	if cfg.DBMinConnections < 0 {
		return fmt.Errorf("DB_MIN_CONNECTIONS must be 0 or greater")
	}
	if cfg.DBMinConnections > cfg.DBMaxConnections {
		return fmt.Errorf("DB_MIN_CONNECTIONS (%d) cannot be greater than DB_MAX_CONNECTIONS (%d)",
			cfg.DBMinConnections, cfg.DBMaxConnections)
	}

	return nil
}

func (cfg *ServerEnvironment) jarmOption() (domain.JarmOption, error) {
	signed := domain.JarmSigned{Algorithm: cfg.JarmJWSAlg}
	encrypted := domain.JarmEncrypted{Algorithm: cfg.JarmJWEAlg, Encode: cfg.JarmJWEEnc}

	switch cfg.JarmOption {
	case JarmOptionSigned:
		if _, err := crypto.SignatureAlgorithm(signed.Algorithm); err != nil {
			return nil, fmt.Errorf("invalid JARM_JWS_ALG: %w", err)
		}
		return signed, nil
	case JarmOptionEncrypted, JarmOptionSignedAndEncrypted:
		if _, err := crypto.KeyEncryptionAlgorithm(encrypted.Algorithm); err != nil {
			return nil, fmt.Errorf("invalid JARM_JWE_ALG: %w", err)
		}
		if _, err := crypto.ContentEncryptionAlgorithm(encrypted.Encode); err != nil {
			return nil, fmt.Errorf("invalid JARM_JWE_ENC: %w", err)
		}
		if cfg.JarmOption == JarmOptionEncrypted {
			return encrypted, nil
		}
		if _, err := crypto.SignatureAlgorithm(signed.Algorithm); err != nil {
			return nil, fmt.Errorf("invalid JARM_JWS_ALG: %w", err)
		}
		return domain.JarmSignedAndEncrypted{Signed: signed, Encrypted: encrypted}, nil
	default:
		return nil, fmt.Errorf("invalid JARM_OPTION: %s", cfg.JarmOption)
	}
}

// PublicEndpoint returns PUBLIC_URL joined with path. path may contain the request id placeholder.
func (cfg *ServerEnvironment) PublicEndpoint(path string) string {
	return strings.TrimRight(cfg.PublicURL, "/") + path
}

// Endpoints are the by-reference URL builders derived from PUBLIC_URL.
type Endpoints struct {
	RequestObject          domain.URLBuilder
	PresentationDefinition domain.URLBuilder
	JarmJWKS               domain.URLBuilder
	ResponseURI            domain.URLBuilder
}

func (cfg *ServerEnvironment) Endpoints() Endpoints {
	return Endpoints{
		RequestObject:          domain.URLWithRequestID(cfg.PublicEndpoint(RequestObjectPath)),
		PresentationDefinition: domain.URLWithRequestID(cfg.PublicEndpoint(PresentationDefinitionPath)),
		JarmJWKS:               domain.URLWithRequestID(cfg.PublicEndpoint(JarmJWKSPath)),
		ResponseURI:            domain.FixedURL(cfg.PublicEndpoint(DirectPostPath)),
	}
}

// LoadSigningConfig reads the request object signing key and, for the x509 schemes, attaches
// the certificate chain after checking it matches the key and carries CLIENT_ID as a SAN.
func (cfg *ServerEnvironment) LoadSigningConfig() (domain.SigningConfig, error) {
	key, err := crypto.ReadSigningKeyFromJWKFile(cfg.SigningKeyPath)
	if err != nil {
		return domain.SigningConfig{}, fmt.Errorf("failed to load SIGNING_KEY_PATH: %w", err)
	}

	if cfg.ClientIDScheme == SchemeX509SanDNS || cfg.ClientIDScheme == SchemeX509SanURI {
		chain, err := crypto.ReadCertChainFromPEMFile(cfg.SigningCertChainPath)
		if err != nil {
			return domain.SigningConfig{}, fmt.Errorf("failed to load SIGNING_CERT_CHAIN_PATH: %w", err)
		}
		if err := crypto.ValidateClientIDInSAN(chain[0], cfg.ClientID, cfg.ClientIDScheme == SchemeX509SanURI); err != nil {
			return domain.SigningConfig{}, err
		}
		if err := crypto.AttachCertChain(key, chain); err != nil {
			return domain.SigningConfig{}, err
		}
	}

	return domain.SigningConfig{Key: key, Algorithm: cfg.SigningAlg}, nil
}

// VerifierConfig builds the immutable verifier configuration. It is called once at startup.
func (cfg *ServerEnvironment) VerifierConfig(signing domain.SigningConfig) (domain.VerifierConfig, error) {
	identity := domain.ClientIdentity{ClientID: cfg.ClientID, JarSigning: signing}
	var scheme domain.ClientIDScheme
	switch cfg.ClientIDScheme {
	case SchemePreRegistered:
		scheme = domain.PreRegistered{ClientIdentity: identity}
	case SchemeX509SanDNS:
		scheme = domain.X509SanDNS{ClientIdentity: identity}
	case SchemeX509SanURI:
		scheme = domain.X509SanURI{ClientIdentity: identity}
	default:
		return domain.VerifierConfig{}, fmt.Errorf("invalid CLIENT_ID_SCHEME: %s", cfg.ClientIDScheme)
	}

	jarm, err := cfg.jarmOption()
	if err != nil {
		return domain.VerifierConfig{}, err
	}

	endpoints := cfg.Endpoints()
	embed := func(mode string, builder domain.URLBuilder) domain.EmbedOption {
		if mode == domain.EmbedModeByReference {
			return domain.ByReference{Builder: builder}
		}
		return domain.ByValue{}
	}

	return domain.VerifierConfig{
		ClientIDScheme:               scheme,
		JarOption:                    embed(cfg.JarMode, endpoints.RequestObject),
		PresentationDefinitionOption: embed(cfg.PresentationDefinitionMode, endpoints.PresentationDefinition),
		ResponseModeOption:           domain.ResponseMode(cfg.ResponseMode),
		ResponseURLBuilder:           endpoints.ResponseURI,
		MaxAge:                       cfg.MaxAge,
		ClientMetaData: domain.ClientMetaData{
			JWKOption:                   embed(cfg.JWKSMode, endpoints.JarmJWKS),
			IDTokenSignedResponseAlg:    cfg.IDTokenSignedResponseAlg,
			IDTokenEncryptedResponseAlg: cfg.IDTokenEncryptedResponseAlg,
			IDTokenEncryptedResponseEnc: cfg.IDTokenEncryptedResponseEnc,
			SubjectSyntaxTypesSupported: cfg.SubjectSyntaxTypesSupported,
			JarmOption:                  jarm,
		},
	}, nil
}

// WalletKeyConfig configures the trust keys used to verify signed JARM responses.
func (cfg *ServerEnvironment) WalletKeyConfig() oid4vp.WalletKeyConfig {
	return oid4vp.WalletKeyConfig{
		JWKSURL:            cfg.WalletJWKSURL,
		KeysDir:            cfg.WalletKeysDir,
		MinRefreshInterval: cfg.JWKCacheMinRefresh,
		MaxRefreshInterval: cfg.JWKCacheMaxRefresh,
	}
}

// PoolConfig maps the DB_* settings onto the connection pool configuration.
func (cfg *ServerEnvironment) PoolConfig() database.PoolConfig {
	return database.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConnections,
		MinConns:        cfg.DBMinConnections,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		ConnectTimeout:  cfg.DBConnectTimeout,
		PingTimeout:     cfg.DatabasePingTimeout,
	}
}
