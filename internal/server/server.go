package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/config"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/logger"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/metrics"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/server/handlers"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/server/middleware"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/version"
)

// VerifierService is implemented by *transaction.Service.
type VerifierService interface {
	handlers.PresentationService
	handlers.WalletService
}

// Dependencies are the collaborators the server routes requests to.
type Dependencies struct {
	Service VerifierService

	// SigningKeys is the public JWK set published at /.well-known/jwks.json
	SigningKeys jwk.Set

	// Readiness is nil when the in-memory store is used
	Readiness handlers.ReadinessChecker

	// Pool is closed by DatabaseShutdown. Optional.
	Pool *pgxpool.Pool

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

type Server struct {
	config *config.ServerEnvironment
	logger *slog.Logger
	router *chi.Mux
	deps   Dependencies
}

func NewServer(cfg *config.ServerEnvironment, logger *slog.Logger, deps Dependencies) (*Server, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("verifier service is required")
	}
	if deps.SigningKeys == nil {
		deps.SigningKeys = jwk.NewSet()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	server := &Server{
		config: cfg,
		logger: logger,
		router: chi.NewRouter(),
		deps:   deps,
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server, nil
}

// Handler returns the router. It is used by tests and by Start.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(middleware.Instrument(s.deps.Metrics))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(60 * time.Second))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
}

func (s *Server) registerRoutes() {
	presentations := handlers.NewPresentationHandler(s.deps.Service)
	wallet := handlers.NewWalletHandler(s.deps.Service)

	s.router.Route("/ui", func(r chi.Router) {
		r.Use(middleware.RequestSizeLimit(s.config.MaxRequestSize))
		r.Post("/presentations", presentations.HandleInitTransaction)
		r.Get("/presentations/{transactionId}", presentations.HandleGetWalletResponse)
	})

	s.router.Route("/wallet", func(r chi.Router) {
		r.Use(middleware.RequestSizeLimit(s.config.MaxRequestSize))
		r.Get("/request.jwt/{requestId}", wallet.HandleGetRequestObject)
		r.Get("/pd/{requestId}", wallet.HandleGetPresentationDefinition)
		r.Get("/jarm/{requestId}/jwks.json", wallet.HandleGetJarmJwks)
		r.Post("/direct_post", wallet.HandleDirectPost)
	})

	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/ready", handlers.HandleReadiness(s.deps.Readiness))
	s.router.Get("/version", handlers.HandleVersion(version.Get()))
	s.router.Get("/.well-known/jwks.json", handlers.HandleJWKS(s.deps.SigningKeys))
	s.router.Get("/docs/swagger.json", handlers.HandleSwaggerJSON)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr),
			slog.String("public_url", s.config.PublicURL))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) DatabaseShutdown() {
	if s.deps.Pool != nil {
		s.deps.Pool.Close()
		s.logger.Info("database connection closed")
	}
}
