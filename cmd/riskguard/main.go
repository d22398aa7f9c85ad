// Command riskguard bootstraps the decision core's collaborators (config
// store, telemetry, feature cache, pattern matcher, rule engine,
// orchestrator) and exposes the process_decision/health/ready library
// contract: it serves the Prometheus scrape endpoint and, given a request
// document on the command line, renders one decision to stdout. There is
// no HTTP transport for process_decision itself (§9 Open Question).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hollis-varga/riskguard/internal/domain/pattern"
	"github.com/hollis-varga/riskguard/internal/infrastructure/cache"
	"github.com/hollis-varga/riskguard/internal/infrastructure/config"
	"github.com/hollis-varga/riskguard/internal/infrastructure/telemetry"
	"github.com/hollis-varga/riskguard/internal/metrics"
	"github.com/hollis-varga/riskguard/internal/patternmatcher"
	"github.com/hollis-varga/riskguard/internal/ruleengine"
	decisionservice "github.com/hollis-varga/riskguard/internal/service/decision"
)

func main() {
	var (
		configPath    = flag.String("config", "configs/riskguard.yaml", "path to the system configuration document")
		rulesPath     = flag.String("rules", "configs/rules.json", "path to the rule configuration document")
		blacklistPath = flag.String("blacklist", "configs/blacklist.txt", "path to the blacklist pattern file")
		whitelistPath = flag.String("whitelist", "configs/whitelist.txt", "path to the whitelist pattern file")
		requestPath   = flag.String("request", "", "path to a request document to decide on and exit")
		modelVer      = flag.String("model-version", "v1", "model version recorded on every decision")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := telemetry.NewLogger(cfg.Logging.Level, zapcore.AddSync(os.Stdout), nil, cfg.Logging.EnableConsole, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	telProvider, err := telemetry.InitializeOpenTelemetry(context.Background(), &telemetry.Config{
		ServiceName:    "riskguard",
		ServiceVersion: *modelVer,
		Environment:    "production",
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		Enabled:        cfg.Tracing.Enabled,
		SamplingRate:   cfg.Tracing.SamplingRate,
		ExportTimeout:  30 * time.Second,
		BatchTimeout:   5 * time.Second,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()
	tracer := telemetry.NewOpenTelemetryTracer("orchestrator")

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRegistry(reg)

	matcher := patternmatcher.New(patternmatcher.BackendAuto)
	if err := loadPatterns(matcher, *blacklistPath, *whitelistPath); err != nil {
		logger.Fatal("failed to load pattern lists", zap.Error(err))
	}

	engine := ruleengine.New()
	if err := engine.LoadRules(*rulesPath); err != nil {
		logger.Fatal("failed to load rule configuration", zap.Error(err))
	}
	engine.EnableHotReload(*rulesPath, 5*time.Second, nil)

	featureSource := cache.StaticSource{}
	featureProvider := cache.NewFeatureProvider(cfg.Features, featureSource, logger)

	worker := engine.NewWorker()
	svc := decisionservice.New(matcher, worker, engine, recorder, *modelVer,
		decisionservice.WithFeatureProvider(featureProvider),
		decisionservice.WithLogger(logger),
		decisionservice.WithTracer(tracer))

	if *requestPath != "" {
		decideOnce(svc, *requestPath)
		return
	}

	runServer(cfg, reg, logger, svc)
}

// loadPatterns reads the blacklist and whitelist pattern files and compiles
// them into the matcher's active backend. Missing files are tolerated so a
// deployment can run with only one list populated.
func loadPatterns(matcher *patternmatcher.Matcher, blacklistPath, whitelistPath string) error {
	var patterns []*pattern.Pattern
	var nextID uint32 = 1

	for _, entry := range []struct {
		path     string
		category pattern.Category
	}{
		{blacklistPath, pattern.CategoryBlacklist},
		{whitelistPath, pattern.CategoryWhitelist},
	} {
		f, err := os.Open(entry.path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("open %s: %w", entry.path, err)
		}

		loaded, err := patternmatcher.LoadLines(f, entry.category, nextID)
		f.Close()
		if err != nil {
			return fmt.Errorf("load %s: %w", entry.path, err)
		}
		patterns = append(patterns, loaded...)
		nextID += uint32(len(loaded))
	}

	if len(patterns) == 0 {
		return nil
	}
	return matcher.Compile(patterns)
}

func decideOnce(svc *decisionservice.Service, requestPath string) {
	body, err := os.ReadFile(requestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read request document: %v\n", err)
		os.Exit(1)
	}

	resp, err := svc.ProcessDecision(context.Background(), body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decision failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("request_id=%s decision=%s risk_score=%.2f latency_ms=%.3f reasons=%v\n",
		resp.RequestID, resp.Decision, resp.RiskScore, resp.LatencyMs, resp.TriggeredRules)
}

func runServer(cfg *config.Config, reg *prometheus.Registry, logger *zap.Logger, svc *decisionservice.Service) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle(cfg.Monitoring.MetricsPath, metrics.Handler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h := svc.Health()
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintf(w, "%s\n", h.Status)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ready := svc.Ready()
		if ready.Status != "ready" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintf(w, "%s\n", ready.Status)
	})

	addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("shutdown complete")
}
