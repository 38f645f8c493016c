package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	"unique/internal/auth"
	"unique/internal/auth/device"
	"unique/internal/auth/handler"
	authmetrics "unique/internal/auth/metrics"
	"unique/internal/auth/service"
	"unique/internal/auth/store"
	pendingstore "unique/internal/auth/store/pending"
	"unique/internal/auth/token"
	"unique/internal/platform/config"
	"unique/internal/platform/httpserver"
	"unique/internal/platform/logger"
	"unique/internal/platform/metrics"
	"unique/internal/platform/middleware"
	"unique/internal/platform/postgres"
	"unique/internal/platform/redis"
	"unique/internal/ratelimit"
	ratelimitmetrics "unique/internal/ratelimit/metrics"
	ratelimitmw "unique/internal/ratelimit/middleware"
	ratelimitmodels "unique/internal/ratelimit/models"
	"unique/internal/ratelimit/store/bucket"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/audit/publisher"
	kafkasink "unique/pkg/platform/audit/publishers/kafka"
	auditmemory "unique/pkg/platform/audit/store/memory"
	auditpostgres "unique/pkg/platform/audit/store/postgres"
	"unique/pkg/platform/httputil"
	"unique/pkg/platform/middleware/metadata"
	"unique/pkg/platform/middleware/requesttime"
	"unique/pkg/platform/middleware/session"
)

const auditBufferSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("using postgres stores")
	} else {
		log.Info("using in-memory stores")
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var pending service.PendingStore
	if rdb != nil {
		defer rdb.Close()
		pending = pendingstore.NewRedis(rdb.Client)
	}

	var backend *auth.Backend
	if db != nil {
		backend = auth.NewPostgresBackend(db, pending)
	} else {
		backend = auth.NewMemoryBackend(pending)
	}

	auditSink, closeAudit, err := newAuditSink(ctx, cfg.Kafka, db, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	auditPublisher := publisher.NewPublisher(auditSink,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	hasher, err := token.NewHasher(token.Config{
		Algorithm:     cfg.Token.Algorithm,
		SecretKey:     cfg.Token.SecretKey,
		RSAPrivateKey: cfg.Token.RSAPrivateKeyPath,
		RSAPublicKey:  cfg.Token.RSAPublicKeyPath,
	})
	if err != nil {
		return err
	}

	svc, err := auth.NewService(backend, hasher, service.Config{
		Issuer:            cfg.OAuth.Issuer,
		AccessTTL:         cfg.Token.AccessTTL,
		RefreshTTL:        cfg.Token.RefreshTTL,
		IDTokenTTL:        cfg.Token.IDTokenTTL,
		SessionTTL:        cfg.OAuth.SessionTTL,
		RequireClientAuth: cfg.OAuth.RequireClientAuth,
	},
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(authmetrics.New(prometheus.DefaultRegisterer)),
		service.WithDeviceService(device.NewService(true)),
	)
	if err != nil {
		return err
	}

	if cfg.OAuth.SeedDevClient {
		if db != nil {
			log.Warn("SEED_DEV_CLIENT ignored with a database configured")
		} else {
			app, user, err := store.SeedDevClient(ctx, backend.Users, backend.Apps, cfg.OAuth.DevClientSecret, time.Now().UTC())
			if err != nil {
				return err
			}
			log.Info("seeded dev client", "client_id", app.ClientID, "user_id", user.ID.String())
		}
	}

	limits, err := newRateLimits(cfg.RateLimit, rdb, log)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recover(log))
	router.Use(middleware.Logger(log))
	router.Use(metadata.ClientMetadata)
	router.Use(requesttime.Middleware)
	router.Use(metrics.NewHTTP(prometheus.DefaultRegisterer).Middleware)

	router.Get("/health", healthHandler(db, rdb))
	router.Handle("/metrics", metrics.Handler())
	auth.NewHandler(svc, hasher, handler.Config{
		Issuer:         cfg.OAuth.Issuer,
		FrontendURL:    cfg.OAuth.FrontendURL,
		RequireTLS:     cfg.OAuth.RequireTLS,
		CookieNames:    session.CookieNames(cfg.OAuth.SessionCookieName),
		AuthorizeLimit: limits.RateLimit(ratelimitmodels.ClassAuthorize),
		TokenLimit:     limits.RateLimit(ratelimitmodels.ClassToken),
	}, log).Register(router)

	srv := httpserver.New(cfg.Server, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting unique auth server", "addr", cfg.Server.Addr, "issuer", cfg.OAuth.Issuer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newAuditSink persists audit events next to the flow's data and, when brokers
// are configured, streams them to Kafka as well.
func newAuditSink(ctx context.Context, cfg config.Kafka, db *sql.DB, log *slog.Logger) (audit.Store, func(), error) {
	var primary audit.Store = auditmemory.NewInMemoryStore()
	if db != nil {
		primary = auditpostgres.New(db)
	}
	if len(cfg.Brokers) == 0 {
		return primary, func() {}, nil
	}

	client, err := kafkasink.NewClient(cfg.Brokers, cfg.AuditTopic)
	if err != nil {
		return nil, nil, err
	}
	if err := kafkasink.EnsureTopic(ctx, client, cfg.AuditTopic, 3); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("streaming audit events to kafka", "topic", cfg.AuditTopic)
	return audit.NewFanout(primary, kafkasink.NewSink(client, cfg.AuditTopic)), closeKafka(client), nil
}

// newRateLimits shares buckets through Redis when it is configured.
func newRateLimits(cfg config.RateLimit, rdb *redis.Client, log *slog.Logger) (*ratelimitmw.Middleware, error) {
	var buckets ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if rdb != nil {
		buckets = bucket.NewRedisStore(rdb.Client)
	}
	limits := ratelimit.Limits{
		AuthorizePerMinute: cfg.AuthorizePerMinute,
		TokenPerMinute:     cfg.TokenPerMinute,
	}
	if !cfg.Enabled {
		// New rejects zero limits; a disabled middleware never consults them.
		limits = ratelimit.Limits{AuthorizePerMinute: 1, TokenPerMinute: 1}
	}
	limiter, err := ratelimit.New(buckets, limits)
	if err != nil {
		return nil, err
	}
	return ratelimitmw.New(limiter, log,
		ratelimitmw.WithDisabled(!cfg.Enabled),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(prometheus.DefaultRegisterer)),
	), nil
}

func closeKafka(client *kgo.Client) func() {
	return func() {
		client.Close()
	}
}

func healthHandler(db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		if db != nil {
			checks["postgres"] = "ok"
			if err := db.PingContext(ctx); err != nil {
				checks["postgres"] = "unavailable"
				healthy = false
			}
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Health(ctx); err != nil {
				checks["redis"] = "unavailable"
				healthy = false
			}
		}

		status := http.StatusOK
		body := map[string]any{"status": "ok", "checks": checks}
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
		httputil.NoStore(w)
		httputil.WriteJSON(w, status, body)
	}
}
