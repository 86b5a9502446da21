package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/dnscache"

	"github.com/corvid-systems/llmgate/internal/auth"
	"github.com/corvid-systems/llmgate/internal/circuitbreaker"
	"github.com/corvid-systems/llmgate/internal/config"
	"github.com/corvid-systems/llmgate/internal/fallback"
	"github.com/corvid-systems/llmgate/internal/logging"
	"github.com/corvid-systems/llmgate/internal/provider"
	"github.com/corvid-systems/llmgate/internal/provider/deepseek"
	"github.com/corvid-systems/llmgate/internal/provider/huggingface"
	"github.com/corvid-systems/llmgate/internal/provider/openai"
	"github.com/corvid-systems/llmgate/internal/ratelimit"
	"github.com/corvid-systems/llmgate/internal/recorder"
	"github.com/corvid-systems/llmgate/internal/server"
	"github.com/corvid-systems/llmgate/internal/storage/sqlite"
	"github.com/corvid-systems/llmgate/internal/telemetry"
	"github.com/corvid-systems/llmgate/internal/worker"
)

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(os.Stdout, parseLevel(cfg.LogLevel))
	log.Info("starting llmgate", "version", version, "addr", cfg.Addr, "environment", cfg.Environment)

	store, err := sqlite.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("database opened")

	ctx := context.Background()
	if err := config.Bootstrap(ctx, cfg, store); err != nil {
		return err
	}

	dnsResolver := &dnscache.Resolver{}
	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for range t.C {
			dnsResolver.Refresh(true)
		}
	}()

	reg := provider.NewRegistry()
	if cfg.OpenAIAPIKey != "" {
		reg.Register("openai", openai.New(cfg.OpenAIAPIKey, "", dnsResolver))
		log.Info("provider registered", "name", "openai")
	}
	if cfg.DeepSeekAPIKey != "" {
		reg.Register("deepseek", deepseek.New(cfg.DeepSeekAPIKey, "", dnsResolver))
		log.Info("provider registered", "name", "deepseek")
	}
	if cfg.HuggingFaceKey != "" {
		reg.Register("huggingface", huggingface.New(cfg.HuggingFaceKey, "", dnsResolver))
		log.Info("provider registered", "name", "huggingface")
	}
	if len(reg.List()) == 0 {
		log.Warn("no providers configured; every chat completion request will fail")
	}

	apiKeyAuth, err := auth.NewAPIKeyAuth(store)
	if err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promRegistry.MustRegister(collectors.NewGoCollector())
	metrics := telemetry.NewMetrics(promRegistry)
	metricsHandler := promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})

	breakers := circuitbreaker.NewRegistry(circuitbreaker.DefaultConfig())
	executor := fallback.New(reg, breakers, fallback.Options{
		PerAttemptTimeout: cfg.ProviderTimeout,
		Observer:          &telemetry.FallbackObserver{Metrics: metrics},
	})
	costRecorder := recorder.New(store)
	rateLimiter := ratelimit.NewRegistry()

	var tracer = telemetry.Tracer("llmgate/server")
	var tracingShutdown func(context.Context) error
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := telemetry.SetupTracing(ctx, endpoint, 0.1)
		if err != nil {
			log.Warn("tracing setup failed, continuing without tracing", "error", err)
		} else {
			tracingShutdown = shutdown
			log.Info("opentelemetry tracing enabled", "endpoint", endpoint)
		}
	}

	handler := server.New(server.Deps{
		Auth:           apiKeyAuth,
		Providers:      reg,
		Breakers:       breakers,
		Executor:       executor,
		Recorder:       costRecorder,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		Tracer:         tracer,
		RateLimiter:    rateLimiter,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	runner := worker.NewRunner(worker.NewRateLimitEvictor(rateLimiter))
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan error, 1)
	go func() { workerDone <- runner.Run(workerCtx) }()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("llmgate ready", "addr", cfg.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		workerCancel()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		workerCancel()
		return err
	}

	workerCancel()
	if err := <-workerDone; err != nil {
		log.Error("worker shutdown error", "error", err)
	}

	if tracingShutdown != nil {
		if err := tracingShutdown(shutdownCtx); err != nil {
			log.Error("tracing shutdown error", "error", err)
		}
	}

	log.Info("llmgate stopped")
	return nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
