package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/config"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/database"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/idgen"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/logger"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/metrics"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/oid4vp"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/server"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/store/memory"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/store/postgres"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/timeout"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/transaction"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/version"
)

//	@title			verifier-server
//	@description	verifier-server is an OpenID for Verifiable Presentations (OpenID4VP) verifier backend.
//	@description
//	@description	A verifier front end initiates a presentation with `POST /ui/presentations` and
//	@description	later collects the wallet's answer with `GET /ui/presentations/{transactionId}`.
//	@description	The wallet fetches the request object and posts its authorization response under `/wallet`.
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	## Request Limits
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 1MB
//	@description
//	@description	Presentations that are not completed within MAX_AGE are timed out.
//	@license.name	Apache 2.0

//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Verifier
//	@tag.description	Endpoints called by the verifier front end

//	@tag.name			Wallet
//	@tag.description	Endpoints called by the wallet

//	@tag.name			Common
//	@tag.description	Server API endpoints (jwks, health, readiness, version, etc.)

func main() {
	cmd := &cobra.Command{
		Use:   "verifier-server",
		Short: "OpenID4VP verifier backend",
		Long:  `verifier-server initiates presentation transactions, serves signed request objects and receives wallet responses`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("PUBLIC_URL", cfg.PublicURL),
		slog.String("CLIENT_ID", cfg.ClientID),
		slog.String("CLIENT_ID_SCHEME", cfg.ClientIDScheme),
		slog.String("JAR_MODE", cfg.JarMode),
		slog.String("RESPONSE_MODE", cfg.ResponseMode),
		slog.String("JARM_OPTION", cfg.JarmOption),
		slog.Duration("MAX_AGE", cfg.MaxAge),
		slog.Bool("DATABASE", cfg.DatabaseURL != ""),
	)

	signing, err := cfg.LoadSigningConfig()
	if err != nil {
		appLogger.Error("Failed to load signing key", slog.String("error", err.Error()))
		os.Exit(1)
	}

	verifierConfig, err := cfg.VerifierConfig(signing)
	if err != nil {
		appLogger.Error("Invalid verifier configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appMetrics := metrics.New()
	deps := server.Dependencies{
		Metrics:  appMetrics,
		Gatherer: prometheus.DefaultGatherer,
	}

	var store interface {
		transaction.PresentationStore
		timeout.PresentationStore
	}
	if cfg.DatabaseURL != "" {
		dbCtx, dbCancel := context.WithTimeout(ctx, cfg.DatabasePingTimeout)
		defer dbCancel()

		pool, err := database.NewPool(dbCtx, cfg.PoolConfig())
		if err != nil {
			appLogger.Error("Unable to connect to PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		appLogger.Info("connected to PostgreSQL")

		if cfg.DBRunMigrations {
			if err := database.Migrate(ctx, pool); err != nil {
				appLogger.Error("Failed to run database migrations", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		// get the sqlc generated database queries
		queries := database.New(pool)
		store = postgres.New(queries)
		deps.Pool = pool
		deps.Readiness = queries
	} else {
		appLogger.Warn("DATABASE_URL not set, presentations are kept in memory")
		store = memory.New()
	}

	walletKeys, err := oid4vp.NewWalletKeyManager(ctx, cfg.WalletKeyConfig(), appLogger)
	if err != nil {
		appLogger.Error("Failed to initialise wallet keys", slog.String("error", err.Error()))
		os.Exit(1)
	}

	service, err := transaction.New(verifierConfig,
		transaction.Endpoints{
			RequestURI:                cfg.Endpoints().RequestObject,
			PresentationDefinitionURI: cfg.Endpoints().PresentationDefinition,
		},
		transaction.Dependencies{
			Store:        store,
			IDs:          idgen.New(),
			EphemeralKey: oid4vp.NewEphemeralKeyGenerator(verifierConfig.ClientMetaData.JarmOption),
			Signer:       oid4vp.NewRequestObjectSigner(),
			Jarm:         oid4vp.NewJarmVerifier(walletKeys),
		},
		transaction.WithLogger(appLogger),
		transaction.WithMetrics(appMetrics),
	)
	if err != nil {
		appLogger.Error("Failed to create transaction service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	deps.Service = service

	sweeper, err := timeout.New(store, cfg.MaxAge,
		timeout.WithInterval(cfg.TimeoutSweepInterval),
		timeout.WithLogger(appLogger),
		timeout.WithMetrics(appMetrics),
	)
	if err != nil {
		appLogger.Error("Failed to create timeout sweeper", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps.SigningKeys, err = crypto.PublicJWKSet(signing.Key)
	if err != nil {
		appLogger.Error("Failed to derive public signing key", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	// configure the server
	srv, err := server.NewServer(cfg, appLogger, deps)
	if err != nil {
		appLogger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer srv.DatabaseShutdown()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		if err := sweeper.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
