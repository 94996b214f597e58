package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"videoforge/internal/agent"
	"videoforge/internal/artifact"
	"videoforge/internal/config"
	"videoforge/internal/creator"
	"videoforge/internal/llm"
	"videoforge/internal/media"
	"videoforge/internal/observability"
	"videoforge/internal/ports"
	"videoforge/internal/render"
	"videoforge/internal/server"
	"videoforge/internal/status"
	"videoforge/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	obs := initializeObservability(cfg)
	logStartup(cfg, obs)

	deps := initializeDependencies(cfg, obs)
	defer deps.gateway.Close()

	pipeline := buildPipeline(cfg, deps, obs)
	srv := buildServer(cfg, deps, pipeline, obs)

	runUntilSignal(cfg, srv, obs)
}

// Dependencies holds all initialized infrastructure components
type Dependencies struct {
	storage  ports.ObjectStorage
	statuses ports.StatusStore
	gateway  *llm.Gateway
	renderer *render.Runner
	locator  *artifact.Locator
	videos   *artifact.Store
	audio    *media.Fixer
}

func initializeObservability(cfg *config.Config) ports.Observability {
	obs, err := observability.CreateObservability(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}
	return obs
}

func logStartup(cfg *config.Config, obs ports.Observability) {
	logger, metrics := mustComponents(obs, "main")
	logger.Info("Starting application",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment)
	metrics.IncrementCounter("application.starts", nil)
}

func initializeDependencies(cfg *config.Config, obs ports.Observability) *Dependencies {
	logger, metrics := mustComponents(obs, "init")

	storageClient, err := storage.Create(cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	statusStore, err := status.Create(cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize status store", "error", err)
		log.Fatalf("Failed to initialize status store: %v", err)
	}

	llmLogger, llmMetrics := mustComponents(obs, "llm")
	gateway, err := llm.NewGateway(context.Background(), cfg, llmLogger, llmMetrics)
	if err != nil {
		logger.Error("Failed to initialize LLM gateway", "error", err)
		log.Fatalf("Failed to initialize LLM gateway: %v", err)
	}

	renderLogger, renderMetrics := mustComponents(obs, "render")
	renderer, err := render.NewRunner(cfg, renderLogger, renderMetrics)
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}

	artifactLogger, artifactMetrics := mustComponents(obs, "artifact")
	locator, err := artifact.NewLocator(cfg.Video.OutputDir, cfg.Video.FinalDir, storageClient, artifactLogger, artifactMetrics)
	if err != nil {
		log.Fatalf("Failed to initialize artifact locator: %v", err)
	}
	videos, err := artifact.NewStore(cfg.Video.FinalDir, storageClient, artifactLogger, artifactMetrics)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}

	mediaLogger, mediaMetrics := mustComponents(obs, "media")
	audio := media.NewFixer(cfg, mediaLogger, mediaMetrics)

	metrics.IncrementCounter("init.success", nil)
	return &Dependencies{
		storage:  storageClient,
		statuses: statusStore,
		gateway:  gateway,
		renderer: renderer,
		locator:  locator,
		videos:   videos,
		audio:    audio,
	}
}

func buildPipeline(cfg *config.Config, deps *Dependencies, obs ports.Observability) *creator.Creator {
	agentLogger, _ := mustComponents(obs, "agent")
	creatorLogger, creatorMetrics := mustComponents(obs, "creator")

	return creator.New(creator.Deps{
		Solution: agent.NewSolutionAgent(deps.gateway, agentLogger),
		Topic:    agent.NewTopicAgent(deps.gateway, agentLogger),
		Code:     agent.NewCodeAgent(deps.gateway, agentLogger),
		Renderer: deps.renderer,
		Locator:  deps.locator,
		Audio:    deps.audio,
		Statuses: deps.statuses,
	}, cfg.Retry, creatorLogger, creatorMetrics)
}

func buildServer(cfg *config.Config, deps *Dependencies, pipeline *creator.Creator, obs ports.Observability) *server.Server {
	logger, metrics := mustComponents(obs, "server")
	return server.New(cfg, pipeline, deps.statuses, deps.videos, logger, metrics)
}

func runUntilSignal(cfg *config.Config, srv *server.Server, obs ports.Observability) {
	logger, metrics := mustComponents(obs, "main")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", "error", err)
			metrics.IncrementCounter("start.failures", nil)
			log.Fatalf("Failed to start: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Shutdown complete")
}

func mustComponents(obs ports.Observability, component string) (ports.Logger, ports.Metrics) {
	logger, metrics, err := obs.ComponentsScoped(component)
	if err != nil {
		log.Fatalf("Failed to get observability components: %v", err)
	}
	return logger, metrics
}
