// reasonctl is the process entry point: it wires every core component
// together and serves the fixed tool catalog over stdio until the
// process receives an interrupt.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deepreason/orchestrator/pkg/analysis"
	"github.com/deepreason/orchestrator/pkg/cache"
	"github.com/deepreason/orchestrator/pkg/convo"
	"github.com/deepreason/orchestrator/pkg/dispatch"
	"github.com/deepreason/orchestrator/pkg/health"
	"github.com/deepreason/orchestrator/pkg/mcpserver"
	"github.com/deepreason/orchestrator/pkg/provider"
	"github.com/deepreason/orchestrator/pkg/provider/grpcprovider"
	"github.com/deepreason/orchestrator/pkg/rcconfig"
	"github.com/deepreason/orchestrator/pkg/strategy"
	"github.com/deepreason/orchestrator/pkg/tournament"
	"github.com/deepreason/orchestrator/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	providerAddr := flag.String("provider-addr", getEnv("PROVIDER_ADDR", "localhost:9090"), "Address of the gRPC model sidecar")
	providerName := flag.String("provider-name", getEnv("PROVIDER_NAME", "primary"), "Name this provider registers under")
	providerModel := flag.String("provider-model", getEnv("PROVIDER_MODEL", "default"), "Model identifier passed to the provider")
	metricsAddr := flag.String("metrics-addr", getEnv("METRICS_ADDR", ":9464"), "Address the Prometheus /metrics endpoint listens on; empty disables it")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("no .env file loaded", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment", "path", envPath)
	}

	cfg, err := rcconfig.Load(filepath.Join(*configDir, "reasonctl.yaml"))
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	setLogLevel(cfg.LogLevel)

	slog.Info("starting reasonctl", "version", version.Full(), "module", version.ModulePath, "config_dir", *configDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credentials := provider.NewCredentialStore(func(name string, active bool) {
		slog.Info("provider credential changed", "provider", name, "active", active)
	})
	credentials.StartExpirySweep(10 * time.Minute)
	defer credentials.Stop()

	if token := os.Getenv("PROVIDER_API_KEY"); token != "" {
		credentials.SetCredential(*providerName, token, 0)
	} else {
		slog.Warn("PROVIDER_API_KEY not set; provider will report unavailable until a credential is set")
	}

	gateway := provider.NewGateway(credentials)
	sidecar, err := grpcprovider.New(*providerAddr, grpcprovider.Config{
		Name:        *providerName,
		Model:       *providerModel,
		Temperature: 0.2,
		MaxTokens:   2048,
	}, credentials)
	if err != nil {
		slog.Error("failed to dial provider sidecar", "addr", *providerAddr, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sidecar.Close(); err != nil {
			slog.Warn("error closing provider connection", "error", err)
		}
	}()
	gateway.Register(sidecar)

	resultCache := cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxBytes, cfg.Cache.TTL())
	resultCache.StartCleanup(cfg.Cache.CleanupInterval())
	defer resultCache.Stop()

	router := strategy.NewRouter(
		&strategy.DeepStrategy{Gateway: gateway, Cache: resultCache},
		&strategy.QuickStrategy{Gateway: gateway, Cache: resultCache},
	)

	scheduler := convo.NewScheduler(
		conversationResponder(gateway),
		conversationFinalizer(),
		convo.WithIdleTimeout(cfg.Session.SessionTimeout()),
		convo.WithSweepInterval(cfg.Session.SweepInterval()),
		convo.WithMaxTurns(cfg.Session.MaxTurns),
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	engine := tournament.NewEngine(tournamentQuerier(gateway))

	metricsReg := prometheus.NewRegistry()
	if *metricsAddr != "" {
		metricsSrv := startMetricsServer(*metricsAddr, metricsReg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("error shutting down metrics server", "error", err)
			}
		}()
	}

	monitor := health.NewMonitor(health.NewPrometheusObserver(metricsReg))
	if err := monitor.Register(health.CheckConfig{
		Name:    "provider_availability",
		Type:    health.CheckTypeDependency,
		Enabled: true,
		CheckFn: providerHealthCheck(gateway),
	}); err != nil {
		slog.Error("failed to register health check", "error", err)
		os.Exit(1)
	}
	if err := monitor.Register(health.CheckConfig{
		Name:    "result_cache",
		Type:    health.CheckTypeResource,
		Enabled: true,
		CheckFn: cacheHealthCheck(resultCache),
	}); err != nil {
		slog.Error("failed to register health check", "error", err)
		os.Exit(1)
	}

	dispatcher := &dispatch.Dispatcher{
		Router:     router,
		Scheduler:  scheduler,
		Tournament: engine,
		Health:     monitor,
	}

	srv := mcpserver.New(version.AppName, version.Full(), dispatcher)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("mcp server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("reasonctl shut down cleanly")
}

// startMetricsServer serves the given registry's collectors at /metrics on
// addr in a background goroutine. The caller is responsible for calling
// Shutdown on the returned server during teardown.
func startMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
	slog.Info("serving prometheus metrics", "addr", addr)
	return srv
}

func setLogLevel(level rcconfig.LogLevel) {
	var l slog.Level
	switch level {
	case rcconfig.LogLevelError:
		l = slog.LevelError
	case rcconfig.LogLevelWarn:
		l = slog.LevelWarn
	case rcconfig.LogLevelDebug, rcconfig.LogLevelTrace:
		l = slog.LevelDebug
	default:
		l = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(l)
}

// conversationResponder builds a convo.Responder that replays the full
// turn history into a single provider prompt on every call; CompleteAny
// picks whichever registered provider is available.
func conversationResponder(gateway *provider.Gateway) convo.Responder {
	return func(ctx context.Context, ctxRecord analysis.Context, turns []convo.Turn, message string) (string, float64, error) {
		if !gateway.AnyAvailable() {
			return "", 0, fmt.Errorf("no provider available to continue this conversation")
		}
		_, reply, err := gateway.CompleteAny(ctx, conversationPrompt(ctxRecord, turns, message), provider.CompleteOptions{})
		if err != nil {
			return "", 0, err
		}
		return reply, confidenceFromTurnCount(len(turns)), nil
	}
}

func conversationFinalizer() convo.Finalizer {
	return func(ctxRecord analysis.Context, turns []convo.Turn, progress convo.Progress, format string) (analysis.Result, error) {
		var reasoning strings.Builder
		for _, t := range turns {
			fmt.Fprintf(&reasoning, "[%s] %s\n", t.Role, t.ContentText)
		}
		return analysis.Result{
			Status:    analysis.StatusSuccess,
			Reasoning: reasoning.String(),
			Metadata: analysis.Metadata{
				Strategy:   "conversation",
				Confidence: progress.ConfidenceLevel,
				Reason:     format,
			},
		}, nil
	}
}

func conversationPrompt(ctxRecord analysis.Context, turns []convo.Turn, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Focus files: %s\n", strings.Join(ctxRecord.FocusArea.Files, ", "))
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.ContentText)
	}
	fmt.Fprintf(&b, "caller: %s\n", message)
	return b.String()
}

// confidenceFromTurnCount gives a rough rising-confidence curve so long
// conversations eventually cross convo.ConfidenceAutoCompleteThreshold
// even absent explicit provider-reported confidence.
func confidenceFromTurnCount(turnCount int) float64 {
	c := 0.2 + 0.1*float64(turnCount)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

// tournamentQuerier builds a tournament.Querier that puts one hypothesis
// to whichever provider the gateway has available and folds the reply
// into a MatchResult.
func tournamentQuerier(gateway *provider.Gateway) tournament.Querier {
	return func(ctx context.Context, h tournament.Hypothesis, testScope string) (tournament.MatchResult, error) {
		if !gateway.AnyAvailable() {
			return tournament.MatchResult{}, fmt.Errorf("no provider available to judge hypothesis %s", h.ID)
		}
		prompt := fmt.Sprintf(
			"Evaluate hypothesis %q (%s) against scope %q. Rate likelihood 0-100 with evidence.",
			h.Description, h.Type, testScope,
		)
		_, reply, err := gateway.CompleteAny(ctx, prompt, provider.CompleteOptions{})
		if err != nil {
			return tournament.MatchResult{}, err
		}
		return tournament.MatchResult{
			HypothesisID: h.ID,
			Likelihood:   likelihoodFromConfidence(h.Confidence),
			Evidence:     []string{reply},
		}, nil
	}
}

func likelihoodFromConfidence(confidence int) float64 {
	return float64(confidence) * 20
}

func providerHealthCheck(gateway *provider.Gateway) health.CheckFunc {
	return func(ctx context.Context) (health.Status, map[string]any, error) {
		names := gateway.Names()
		if !gateway.AnyAvailable() {
			return health.StatusUnhealthy, map[string]any{"providers": names}, nil
		}
		return health.StatusHealthy, map[string]any{"providers": names}, nil
	}
}

func cacheHealthCheck(c *cache.Cache) health.CheckFunc {
	return func(ctx context.Context) (health.Status, map[string]any, error) {
		stats := c.Stats()
		return health.StatusHealthy, map[string]any{
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"hit_rate": stats.HitRate(),
		}, nil
	}
}
