package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skillmesh/ai-orchestrator/internal/cache"
	"github.com/skillmesh/ai-orchestrator/internal/classify"
	"github.com/skillmesh/ai-orchestrator/internal/config"
	"github.com/skillmesh/ai-orchestrator/internal/providers/anthropic"
	"github.com/skillmesh/ai-orchestrator/internal/providers/gemini"
	"github.com/skillmesh/ai-orchestrator/internal/providers/openai"
	"github.com/skillmesh/ai-orchestrator/internal/registry"
	"github.com/skillmesh/ai-orchestrator/internal/routing"
	"github.com/skillmesh/ai-orchestrator/internal/scoring"
	"github.com/skillmesh/ai-orchestrator/internal/server"
	"github.com/skillmesh/ai-orchestrator/internal/transparency"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Application wires the engine together: registry, classifier, cache,
// scoring, transparency, router, prober, and the HTTP surface.
type Application struct {
	config *config.Config
	server *server.Server
	prober *registry.Prober
	logger *logrus.Logger
}

// NewApplication builds the full dependency graph from configuration.
// Configuration failures here are fatal; nothing is retried at runtime.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logrus.New()
	if err := setupLogger(logger, cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	reg := registry.New(cfg.Router.FailureThreshold, cfg.CandidateOrder(), logger)
	if err := registerProviders(reg, cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to register providers: %w", err)
	}

	scorer, err := scoring.NewEngine(cfg.Scoring.Profiles, cfg.TagProfiles())
	if err != nil {
		return nil, err
	}

	classifier := classify.New(nil, cfg.CandidateOrder())
	responseCache := cache.New(cfg.CacheTTLs(cache.DefaultTTLs()))
	reporter := transparency.NewReporter(cfg.Router.TransparencyRetention)

	router := routing.New(classifier, reg, responseCache, scorer, reporter, cfg.Router.TimeoutCeiling, logger)

	srv := server.New(router, reg, reporter, &server.Config{
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}, logger)

	return &Application{
		config: cfg,
		server: srv,
		prober: registry.NewProber(reg, cfg.Router.ProbeInterval, logger),
		logger: logger,
	}, nil
}

// Run starts the application and blocks until shutdown.
func (app *Application) Run() error {
	app.logger.Info("Starting AI orchestrator")

	app.prober.Start()
	defer app.prober.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		app.logger.WithField("address", ":"+app.config.Server.Port).Info("HTTP server starting")
		if err := app.server.Start(); err != nil {
			serverErrors <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case sig := <-sigChan:
		app.logger.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		app.logger.WithError(err).Error("Server shutdown error")
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("Graceful shutdown completed")
	return nil
}

// setupLogger configures the logger from configuration.
func setupLogger(logger *logrus.Logger, cfg config.LoggingConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	switch cfg.Output {
	case "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.Output, err)
		}
		logger.SetOutput(file)
	}

	return nil
}

// registerProviders builds an adapter per enabled provider and registers it
// with its descriptor.
func registerProviders(reg *registry.Registry, cfg *config.Config, logger *logrus.Logger) error {
	registered := 0

	if c := cfg.Providers.OpenAI; c != nil && c.APIKey != "" {
		desc := &types.ProviderDescriptor{ID: "openai", Capabilities: c.Capabilities, LatencyBound: c.LatencyBound}
		if err := reg.Register(desc, openai.New(c, logger)); err != nil {
			return err
		}
		registered++
	}

	if c := cfg.Providers.Anthropic; c != nil && c.APIKey != "" {
		desc := &types.ProviderDescriptor{ID: "anthropic", Capabilities: c.Capabilities, LatencyBound: c.LatencyBound}
		if err := reg.Register(desc, anthropic.New(c, logger)); err != nil {
			return err
		}
		registered++
	}

	if c := cfg.Providers.Gemini; c != nil && c.APIKey != "" {
		provider, err := gemini.New(context.Background(), c, logger)
		if err != nil {
			return err
		}
		desc := &types.ProviderDescriptor{ID: "gemini", Capabilities: c.Capabilities, LatencyBound: c.LatencyBound}
		if err := reg.Register(desc, provider); err != nil {
			return err
		}
		registered++
	}

	if registered == 0 {
		return fmt.Errorf("no providers were registered - check your configuration and API keys")
	}

	logger.WithField("count", registered).Info("Provider registration completed")
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
	fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY            OpenAI API key\n")
	fmt.Fprintf(os.Stderr, "  ANTHROPIC_API_KEY         Anthropic API key\n")
	fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY            Gemini API key\n")
	fmt.Fprintf(os.Stderr, "  ORCHESTRATOR_PORT         Server port (default: 8080)\n")
	fmt.Fprintf(os.Stderr, "  ORCHESTRATOR_LOG_LEVEL    Log level (debug,info,warn,error,fatal)\n")
	fmt.Fprintf(os.Stderr, "  ORCHESTRATOR_LOG_FORMAT   Log format (json,text)\n")
}

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	help := flag.Bool("help", false, "Show usage information")
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		app.logger.WithError(err).Fatal("Application error")
	}
}
