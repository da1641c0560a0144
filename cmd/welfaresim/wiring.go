package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/config"
	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/httpserver"
	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/logger"
	httpmetrics "github.com/baldwij5/welfareSimulation-sub000/internal/platform/metrics"
	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/postgres"
	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/redis"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/credibility"
	simmetrics "github.com/baldwij5/welfareSimulation-sub000/internal/simulation/metrics"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/results"
	audit "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit/publisher"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit/store/kafka"
	"github.com/baldwij5/welfareSimulation-sub000/pkg/platform/audit/store/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
	shutdownTimeout  = 10 * time.Second
)

// app holds the collaborators shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *simmetrics.Metrics
	scorer   credibility.Scorer
	results  results.Store
	auditor  *publisher.Publisher
	events   audit.Reader
	server   *http.Server

	checks  []namedCheck
	closers []func(context.Context) error
}

type namedCheck struct {
	name  string
	check httpserver.HealthCheck
}

// newApp connects every configured backend. Close releases whatever was
// opened, including on a partial failure.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (a *app, err error) {
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, logOut)
	if err != nil {
		return nil, err
	}
	a = &app{
		cfg:      cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			a.Close(context.Background())
			a = nil
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = simmetrics.New(a.registry)

	if a.scorer, err = loadScorer(cfg); err != nil {
		return a, err
	}
	if err = a.openResults(ctx); err != nil {
		return a, err
	}
	if err = a.openAudit(ctx); err != nil {
		return a, err
	}
	return a, nil
}

// loadScorer returns nil when no models or county features are configured;
// staff then use the neutral multiplier.
func loadScorer(cfg *config.Config) (credibility.Scorer, error) {
	var reg *credibility.Registry
	if cfg.Credibility.ModelsPath != "" {
		loaded, err := credibility.LoadFile(cfg.Credibility.ModelsPath)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}
	for _, county := range cfg.Counties {
		if len(county.Features) == 0 {
			continue
		}
		if reg == nil {
			reg = credibility.NewRegistry()
		}
		reg.SetCountyFeatures(county.Name, credibility.Features(county.Features))
	}
	if reg == nil {
		return nil, nil
	}
	return reg, nil
}

func (a *app) openResults(ctx context.Context) error {
	switch results.Backend(a.cfg.Results.Backend) {
	case results.BackendPostgres:
		db, err := postgres.Open(ctx, a.cfg.Results.PostgresDSN)
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { return db.Close() })
		store := results.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		a.results = store
		a.addCheck("postgres", db.PingContext)
	case results.BackendRedis:
		client, err := redis.New(ctx, a.cfg.Results.Redis())
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { return client.Close() })
		opts := []results.RedisOption{results.WithKeyPrefix(a.cfg.Results.KeyPrefix)}
		if a.cfg.Results.TTL > 0 {
			opts = append(opts, results.WithTTL(a.cfg.Results.TTL))
		}
		a.results = results.NewRedisStore(client.Client, opts...)
		a.addCheck("redis", client.Health)
	default:
		a.results = results.NewInMemoryStore()
	}
	a.logger.InfoContext(ctx, "results backend ready", "backend", a.cfg.Results.Backend)
	return nil
}

func (a *app) openAudit(ctx context.Context) error {
	var store audit.Store
	opts := []publisher.Option{publisher.WithLogger(a.logger)}
	switch a.cfg.Audit.Backend {
	case config.AuditBackendNone:
		return nil
	case config.AuditBackendKafka:
		kopts := []kafka.Option{kafka.WithLogger(a.logger)}
		if a.cfg.Audit.KafkaTopic != "" {
			kopts = append(kopts, kafka.WithTopic(a.cfg.Audit.KafkaTopic))
		}
		producer, err := kafka.New(a.cfg.Audit.KafkaBrokers, kopts...)
		if err != nil {
			return err
		}
		a.onClose(producer.Close)
		if err := producer.EnsureTopic(ctx); err != nil {
			return err
		}
		store = producer
		opts = append(opts, publisher.WithCircuitBreaker(breakerThreshold, breakerCooldown))
	default:
		mem := memory.NewInMemoryStore()
		store = mem
		a.events = mem
	}
	if a.cfg.Audit.Buffer > 0 {
		opts = append(opts, publisher.WithAsyncBuffer(a.cfg.Audit.Buffer))
	}
	a.auditor = publisher.NewPublisher(store, opts...)
	// Registered after the store so Close drains the buffer before the
	// producer is flushed.
	a.onClose(func(context.Context) error {
		a.auditor.Close()
		if dropped := a.auditor.Dropped(); dropped > 0 {
			a.logger.Warn("audit events dropped", "count", dropped)
		}
		return nil
	})
	a.logger.InfoContext(ctx, "audit backend ready", "backend", a.cfg.Audit.Backend)
	return nil
}

// serve starts the metrics and results server when an address is configured.
func (a *app) serve() {
	if a.cfg.Metrics.Addr == "" {
		return
	}
	opts := []httpserver.Option{
		httpserver.WithResults(a.results),
		httpserver.WithGatherer(a.registry),
		httpserver.WithMetrics(httpmetrics.New(a.registry)),
		httpserver.WithLogger(a.logger),
	}
	if a.events != nil {
		opts = append(opts, httpserver.WithAuditReader(a.events))
	}
	for _, c := range a.checks {
		opts = append(opts, httpserver.WithHealthCheck(c.name, c.check))
	}

	a.server = httpserver.New(a.cfg.Metrics.Addr, httpserver.NewRouter(opts...))
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Metrics.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server failed", "error", err)
		}
	}()
}

func (a *app) addCheck(name string, check httpserver.HealthCheck) {
	a.checks = append(a.checks, namedCheck{name: name, check: check})
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close stops the server and releases backends in reverse order of opening.
func (a *app) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
