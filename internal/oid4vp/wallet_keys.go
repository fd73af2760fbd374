// wallet_keys.go manages the wallet public keys used to verify signed JARM responses.
//
// Keys come from two places:
//   - a JWKS endpoint published by the wallet provider, fetched and refreshed in the background
//   - JWK files placed in a directory, loaded once at startup
//
// A signed response whose header carries a kid is matched on that kid. Responses without a kid
// are tried against every known key.
package oid4vp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
)

const (
	defaultMinRefreshInterval = 15 * time.Minute
	defaultMaxRefreshInterval = 24 * time.Hour
)

// WalletKeyConfig configures where wallet verification keys come from.
type WalletKeyConfig struct {
	// JWKSURL is the wallet provider's JWKS endpoint. Optional.
	JWKSURL string

	// KeysDir holds .jwk / .jwks / .jwks.json files. Optional.
	KeysDir string

	// MinRefreshInterval and MaxRefreshInterval bound the JWKS cache refresh.
	MinRefreshInterval time.Duration
	MaxRefreshInterval time.Duration
}

// WalletKeyManager implements jws.KeyProvider over wallet keys.
type WalletKeyManager struct {
	config WalletKeyConfig

	// manualKeys is keyed by kid. Keys without a kid are kept in anonymousKeys.
	manualKeys    map[string]jwk.Key
	anonymousKeys []jwk.Key

	jwkCache *jwk.Cache
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewWalletKeyManager loads manual keys and registers the JWKS endpoint (if any).
// The endpoint is fetched in the background so startup does not block on the wallet provider.
func NewWalletKeyManager(ctx context.Context, config WalletKeyConfig, logger *slog.Logger) (*WalletKeyManager, error) {
	if logger == nil {
		return nil, domain.NewMisconfigurationError("logger cannot be nil")
	}

	km := &WalletKeyManager{
		config:     config,
		manualKeys: make(map[string]jwk.Key),
		logger:     logger,
	}

	if config.KeysDir != "" {
		if err := km.loadManualKeys(); err != nil {
			return nil, err
		}
		logger.Info("wallet keys loaded", slog.Int("keys", len(km.manualKeys)+len(km.anonymousKeys)))
	}

	if config.JWKSURL != "" {
		if err := km.initJWKCache(ctx); err != nil {
			return nil, err
		}
	}

	return km, nil
}

// NewStaticWalletKeys returns a key manager over a fixed set of keys.
func NewStaticWalletKeys(logger *slog.Logger, keys ...jwk.Key) *WalletKeyManager {
	km := &WalletKeyManager{manualKeys: make(map[string]jwk.Key), logger: logger}
	for _, key := range keys {
		km.addKey(key)
	}
	return km
}

func (k *WalletKeyManager) addKey(key jwk.Key) {
	if kid, ok := key.KeyID(); ok && kid != "" {
		k.manualKeys[kid] = key
		return
	}
	k.anonymousKeys = append(k.anonymousKeys, key)
}

func (k *WalletKeyManager) loadManualKeys() error {
	info, err := os.Stat(k.config.KeysDir)
	if err != nil {
		return domain.NewMisconfigurationError(fmt.Sprintf("wallet keys directory (%s) is not readable: %v", k.config.KeysDir, err))
	}
	if !info.IsDir() {
		return domain.NewMisconfigurationError(fmt.Sprintf("wallet keys path is not a directory: %s", k.config.KeysDir))
	}

	root, err := os.OpenRoot(k.config.KeysDir)
	if err != nil {
		return domain.NewMisconfigurationError(fmt.Sprintf("failed to open wallet keys directory: %v", err))
	}
	defer root.Close()

	entries, err := os.ReadDir(k.config.KeysDir)
	if err != nil {
		return domain.NewMisconfigurationError(fmt.Sprintf("failed to read wallet keys directory: %v", err))
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filename := entry.Name()
		if !strings.HasSuffix(filename, ".jwk") && !strings.HasSuffix(filename, ".jwks") && !strings.HasSuffix(filename, ".jwks.json") {
			continue
		}

		data, err := root.ReadFile(filename)
		if err != nil {
			k.logger.Warn("skipping unreadable wallet key file",
				slog.String("file", filename),
				slog.String("error", err.Error()))
			continue
		}

		keySet, err := jwk.Parse(data)
		if err != nil {
			k.logger.Warn("skipping invalid wallet key file",
				slog.String("file", filename),
				slog.String("error", err.Error()))
			continue
		}

		for i := range keySet.Len() {
			key, _ := keySet.Key(i)
			public, err := jwk.PublicKeyOf(key)
			if err != nil {
				continue
			}
			k.addKey(public)
		}
	}
	return nil
}

func (k *WalletKeyManager) initJWKCache(ctx context.Context) error {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return domain.NewMisconfigurationError(fmt.Sprintf("failed to create JWK cache: %v", err))
	}

	minInterval, maxInterval := k.config.MinRefreshInterval, k.config.MaxRefreshInterval
	if minInterval <= 0 {
		minInterval = defaultMinRefreshInterval
	}
	if maxInterval < minInterval {
		maxInterval = max(defaultMaxRefreshInterval, minInterval)
	}

	err = cache.Register(ctx, k.config.JWKSURL,
		jwk.WithMinInterval(minInterval),
		jwk.WithMaxInterval(maxInterval),
		jwk.WithWaitReady(false),
	)
	if err != nil {
		return domain.NewMisconfigurationError(fmt.Sprintf("failed to register wallet JWKS endpoint: %v", err))
	}
	k.jwkCache = cache

	k.logger.Info("registered wallet JWKS endpoint for background fetch",
		slog.String("jwks_url", k.config.JWKSURL))
	return nil
}

// FetchKeys implements jws.KeyProvider.
func (k *WalletKeyManager) FetchKeys(ctx context.Context, sink jws.KeySink, sig *jws.Signature, _ *jws.Message) error {
	alg, ok := sig.ProtectedHeaders().Algorithm()
	if !ok {
		return domain.NewValidationError("alg is required in JARM JWS header")
	}
	kid, _ := sig.ProtectedHeaders().KeyID()

	found := 0
	offer := func(key jwk.Key) {
		sink.Key(alg, key)
		found++
	}

	k.mu.RLock()
	if kid != "" {
		if key, ok := k.manualKeys[kid]; ok {
			offer(key)
		}
	} else {
		for _, key := range k.manualKeys {
			offer(key)
		}
		for _, key := range k.anonymousKeys {
			offer(key)
		}
	}
	k.mu.RUnlock()

	if k.jwkCache != nil {
		keySet, err := k.jwkCache.Lookup(ctx, k.config.JWKSURL)
		if err != nil {
			k.logger.Debug("failed to lookup wallet JWK set from cache",
				slog.String("jwks_url", k.config.JWKSURL),
				slog.String("error", err.Error()))
		} else {
			offerSet(keySet, kid, offer)
		}
	}

	if found == 0 {
		if kid != "" {
			return domain.NewNotFoundError(fmt.Sprintf("wallet key not found: %s", kid))
		}
		return domain.NewNotFoundError("no wallet keys available")
	}
	return nil
}

func offerSet(set jwk.Set, kid string, offer func(jwk.Key)) {
	if kid != "" {
		if key, ok := set.LookupKeyID(kid); ok {
			offer(key)
		}
		return
	}
	for i := range set.Len() {
		key, _ := set.Key(i)
		offer(key)
	}
}

// compile time check
var _ jws.KeyProvider = (*WalletKeyManager)(nil)
