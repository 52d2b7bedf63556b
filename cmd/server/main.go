package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"resume-parser/internal/api/routes"
	"resume-parser/internal/background"
	"resume-parser/internal/callback"
	"resume-parser/internal/config"
	"resume-parser/internal/converter"
	"resume-parser/internal/grpc/server"
	"resume-parser/internal/llm"
	"resume-parser/internal/logging"
	"resume-parser/internal/mux"
	"resume-parser/internal/resume"

	"github.com/labstack/echo/v4"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting resume parser", map[string]interface{}{
		"llm_provider": cfg.LLM.Provider,
		"grpc_enabled": cfg.GRPC.Enabled,
		"redis":        cfg.Redis.Enabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// An unhealthy provider does not stop startup; readiness reports it instead
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start LLM manager")
	}

	conv := converter.NewService(cfg)
	svc := resume.NewService(cfg, conv, llmManager)

	var store background.TaskStore
	if cfg.Redis.Enabled {
		redisStore := background.NewRedisTaskStore(cfg)
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.Timeout)
		err := redisStore.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis task store")
		}
		defer redisStore.Close()
		store = redisStore
	}

	taskManager := background.NewTaskManager(cfg, svc, store)
	if cfg.Callback.Enabled {
		callbackClient, err := callback.NewClient(callback.ConfigFromApp(cfg), logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create callback client")
		}
		defer callbackClient.Close()
		taskManager.SetNotifier(callbackClient)
	}
	if err := taskManager.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start task manager")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	deps := routes.Dependencies{
		Resume:           svc,
		LLM:              llmManager,
		Tasks:            taskManager,
		SupportedFormats: conv.SupportedExtensions(),
	}

	var multiplexer *mux.Multiplexer
	if cfg.GRPC.Enabled {
		grpcServer := server.NewServer(cfg, svc, llmManager)
		deps.GRPCMetrics = grpcServer.Metrics()
		grpcServer.Metrics().StartMetricsReporting(ctx, 5*time.Minute)
		multiplexer = mux.NewMultiplexer(cfg, grpcServer, e)
	}

	routes.SetupRoutes(e, cfg, deps)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if multiplexer != nil {
		if err := multiplexer.Start(address); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	} else {
		go func() {
			if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("HTTP server stopped")
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting requests before draining background work
	if multiplexer != nil {
		if err := multiplexer.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error stopping multiplexer")
		}
	} else if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error shutting down server")
	}

	logger.Info("Stopping background task manager...")
	if err := taskManager.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error stopping task manager")
	}

	logger.Info("Stopping LLM manager...")
	if err := llmManager.Stop(); err != nil {
		logger.WithError(err).Error("Error stopping LLM manager")
	}

	logger.Info("Server shutdown complete")
}
