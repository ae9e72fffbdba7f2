package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"invitegate/internal/challenge"
	"invitegate/internal/invite/events"
	invitehandler "invitegate/internal/invite/handler"
	invitemetrics "invitegate/internal/invite/metrics"
	"invitegate/internal/invite/service"
	"invitegate/internal/issuer"
	"invitegate/internal/nonce"
	"invitegate/internal/ownership"
	"invitegate/internal/platform/config"
	"invitegate/internal/platform/httpserver"
	"invitegate/internal/platform/kafka"
	"invitegate/internal/platform/logger"
	"invitegate/internal/platform/telemetry"
	"invitegate/internal/ratelimit/middleware"
	"invitegate/internal/ratelimit/store/bucket"
	"invitegate/internal/session"
	httptransport "invitegate/internal/transport/http"
	"invitegate/pkg/domain"
)

const bucketPruneInterval = time.Minute

func newLogger(cfg config.Config) *slog.Logger {
	return logger.New(cfg.Log.Level, cfg.Log.Format)
}

// runServe wires every dependency and blocks until ctx is cancelled.
func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	slog.SetDefault(log)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	publisher, closePublisher, err := newPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	chains := cfg.ChainSet()
	svc := service.New(
		service.Policy{Chains: chains, DomainSuffix: cfg.Invite.DomainSuffix, MaxInvites: cfg.Invite.MaxInvites},
		st.nonces,
		challenge.NewVerifier(chains, challenge.WithDomain(cfg.Invite.SIWEDomain)),
		ownership.NewClient(map[domain.ChainID]string{
			chains.Primary: cfg.Oracle.PrimaryURL,
			chains.Test:    cfg.Oracle.TestURL,
		}, ownership.WithTimeout(cfg.Oracle.Timeout), ownership.WithSuffix(cfg.Invite.DomainSuffix)),
		st.ledger,
		issuer.NewClient(chains, cfg.Issuer.BaseURL, cfg.Issuer.AdminPassword,
			issuer.WithAdminUser(cfg.Issuer.AdminUser),
			issuer.WithTimeout(cfg.Issuer.Timeout),
			issuer.WithTestChainCode(cfg.Invite.TestChainCode),
		),
		service.WithLogger(log),
		service.WithMetrics(invitemetrics.New(prometheus.DefaultRegisterer)),
		service.WithPublisher(publisher),
	)

	sessions := session.NewManager(cfg.Session.Secret,
		session.WithCookieName(cfg.Session.CookieName),
		session.WithTTL(cfg.Session.TTL),
		session.WithSecure(cfg.Server.CookieSecure),
	)

	buckets := bucket.NewInMemoryBucketStore()
	limiter := middleware.New(buckets, cfg.RateLimit.Limit, cfg.RateLimit.Window, log)
	invites := invitehandler.New(svc, sessions, log, cfg.Invite.AdminKey,
		invitehandler.WithInviteLimiter(limiter.RateLimit("get_invite")),
	)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:      log,
		ServiceName: cfg.Telemetry.ServiceName,
		Checks:      st.checks(),
		Routes:      []httptransport.RouteRegistrar{invites},

		TrustForwardedFor: cfg.Server.TrustForwardedFor,
	})
	srv := httpserver.New(cfg.Server.Addr, router)
	sweeper := nonce.NewSweeper(st.nonces, cfg.Storage.SweepInterval, cfg.Storage.NonceRetain, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting invitegate", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver, "nonce_backend", cfg.Storage.NonceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		return buckets.StartPruning(gctx, bucketPruneInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newPublisher returns a Kafka publisher when brokers are configured and a
// log-only publisher otherwise.
func newPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (service.GrantPublisher, func(), error) {
	if len(cfg.Events.Brokers) == 0 {
		return events.NewLogPublisher(log), func() {}, nil
	}
	producer, err := kafka.NewProducer(ctx, cfg.Events.Brokers, cfg.Events.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing grant events", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer), producer.Close, nil
}
