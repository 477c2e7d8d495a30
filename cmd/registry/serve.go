package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	jwttoken "impactledger/internal/jwt_token"
	"impactledger/internal/platform/config"
	"impactledger/internal/platform/httpserver"
	"impactledger/internal/platform/logger"
	"impactledger/internal/platform/metrics"
	"impactledger/internal/platform/postgres"
	"impactledger/internal/platform/redis"
	"impactledger/internal/registry/cache"
	"impactledger/internal/registry/handler"
	"impactledger/internal/registry/service"
	"impactledger/internal/registry/store"
	httptransport "impactledger/internal/transport/http"
	id "impactledger/pkg/domain"
	"impactledger/pkg/platform/audit"
	"impactledger/pkg/platform/audit/publisher"
	kafkastore "impactledger/pkg/platform/audit/store/kafka"
	auditmemory "impactledger/pkg/platform/audit/store/memory"
	"impactledger/pkg/platform/circuit"
)

const auditBufferSize = 1024

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the Postgres schema before serving")
	return cmd
}

// serve wires dependencies from cfg and runs until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger, migrate bool) error {
	m := metrics.New()
	checks := map[string]httptransport.HealthCheck{}

	ledgerStore, closeStore, err := openStore(ctx, cfg, log, migrate, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithUnknownDelegatePolicy(unknownDelegatePolicy(cfg.Registry.UnknownDelegatePolicy)),
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
		credentialCache := cache.NewGuarded(
			cache.NewRedisCache(redisClient, cfg.Redis.CredentialTTL, m),
			circuit.New("credential-cache"),
			log,
		)
		opts = append(opts, service.WithCredentialCache(credentialCache))
		log.Info("credential cache enabled")
	}

	auditStore, closeAudit, err := openAuditStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
		publisher.WithErrorHook(func(audit.Event, error) { m.IncrementAuditFailures() }),
	)
	opts = append(opts, service.WithAuditPublisher(auditPublisher))

	svc := service.New(ledgerStore, service.NewAdminAuthorizer(id.AccountID(cfg.Registry.Administrator)), opts...)
	jwt := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:   log,
		Latency:  m,
		Gatherer: prometheus.DefaultGatherer,
		Checks:   checks,
		Routes:   []httptransport.Registrar{handler.New(svc, log, jwttoken.NewMiddlewareValidator(jwt))},
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registry", "addr", cfg.Server.Addr, "administrator", cfg.Registry.Administrator)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Drain audit events only after the last request has finished.
		auditPublisher.Close()
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("registry stopped")
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger, migrate bool, checks map[string]httptransport.HealthCheck) (store.Store, func(), error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		log.Warn("DATABASE_URL not set, using in-memory store")
		return store.NewInMemory(), func() {}, nil
	}
	if migrate {
		if err := store.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	checks["postgres"] = db.PingContext
	log.Info("using postgres store")
	return store.NewPostgres(db), func() { _ = db.Close() }, nil
}

func openAuditStore(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("KAFKA_BROKERS not set, keeping audit events in memory")
		return auditmemory.NewInMemoryStore(), func() {}, nil
	}
	if err := kafkastore.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
		return nil, nil, err
	}
	s, err := kafkastore.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing audit events to kafka", "topic", cfg.Kafka.Topic)
	return s, s.Close, nil
}

func unknownDelegatePolicy(p config.UnknownDelegatePolicy) service.UnknownDelegatePolicy {
	if p == config.UnknownDelegateZero {
		return service.UnknownDelegateZero
	}
	return service.UnknownDelegateNotFound
}
