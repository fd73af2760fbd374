package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/metrics"
)

// Endpoints are the URLs at which by-reference artifacts are published.
// They are the fallback when a caller asks for by_reference without the verifier defaulting to it.
type Endpoints struct {
	RequestURI                domain.URLBuilder
	PresentationDefinitionURI domain.URLBuilder
}

// Service is the transaction orchestrator.
type Service struct {
	config    domain.VerifierConfig
	endpoints Endpoints

	store  PresentationStore
	ids    IDGenerator
	keys   EphemeralKeyGenerator
	signer RequestObjectSigner
	jarm   JarmVerifier

	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger overrides slog.Default(). A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records service events on m. Without it no metrics are recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Dependencies are the collaborators every Service needs.
type Dependencies struct {
	Store        PresentationStore
	IDs          IDGenerator
	EphemeralKey EphemeralKeyGenerator
	Signer       RequestObjectSigner
	Jarm         JarmVerifier
}

// New constructs a Service. cfg is used as is for the lifetime of the service.
func New(cfg domain.VerifierConfig, endpoints Endpoints, deps Dependencies, opts ...Option) (*Service, error) {
	if deps.Store == nil || deps.IDs == nil || deps.EphemeralKey == nil || deps.Signer == nil || deps.Jarm == nil {
		return nil, fmt.Errorf("store, id generator, ephemeral key generator, signer and jarm verifier are required")
	}
	if cfg.ClientIDScheme == nil {
		return nil, domain.NewMisconfigurationError("client id scheme is not configured")
	}
	if cfg.MaxAge <= 0 {
		return nil, domain.NewMisconfigurationError("max age must be positive")
	}

	s := &Service{
		config:    cfg,
		endpoints: endpoints,
		store:     deps.Store,
		ids:       deps.IDs,
		keys:      deps.EphemeralKey,
		signer:    deps.Signer,
		jarm:      deps.Jarm,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Config returns the verifier configuration the service was built with.
func (s *Service) Config() domain.VerifierConfig {
	return s.config
}

func unexpectedStage(p domain.Presentation, want domain.Stage) error {
	return domain.NewStateError(fmt.Sprintf("%s: presentation is %s, expected %s", domain.MsgIncorrectState, p.Stage(), want))
}

func (s *Service) storePresentation(ctx context.Context, p domain.Presentation) error {
	start := time.Now()
	err := s.store.StorePresentation(ctx, p)
	s.metrics.ObserveStoreOperationLatency("store", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("store presentation %s: %w", p.Common().ID, err)
	}
	return nil
}

func (s *Service) loadByRequestID(ctx context.Context, raw string) (domain.Presentation, error) {
	requestID, err := domain.ParseRequestID(raw)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	p, err := s.store.LoadPresentationByRequestID(ctx, requestID)
	s.metrics.ObserveStoreOperationLatency("load_by_request_id", time.Since(start).Seconds())
	return p, err
}

func (s *Service) loadByID(ctx context.Context, raw string) (domain.Presentation, error) {
	transactionID, err := domain.ParseTransactionID(raw)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	p, err := s.store.LoadPresentationByID(ctx, transactionID)
	s.metrics.ObserveStoreOperationLatency("load_by_id", time.Since(start).Seconds())
	return p, err
}
