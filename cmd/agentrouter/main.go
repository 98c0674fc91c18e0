// Command agentrouter starts the query-routing agent service.
//
// The service accepts free-text queries over HTTP, classifies each one into
// a capability category (arithmetic, lookup, conversational), and dispatches
// it to the matching tool. Tools call out to an OpenAI-compatible completion
// endpoint (LM Studio by default) and, for weather lookups, the OpenWeather
// API.
//
// Usage:
//
//	go run ./cmd/agentrouter
//
// Configuration is taken from the environment (a .env file is honoured):
//
//	LM_STUDIO_BASE_URL   completion endpoint (default http://localhost:1234/v1)
//	LM_STUDIO_MODEL      model name (default local-model)
//	OPENWEATHER_API_KEY  weather API key; lookup degrades gracefully without it
//	DEFAULT_LOCATION     fallback lookup subject (default Jakarta)
//	AGENT_TIMEOUT        per-call timeout in seconds (default 30)
//	LISTEN_ADDR          bind address (default :8000)
//
// Example request:
//
//	curl -X POST http://localhost:8000/query \
//	  -H "Content-Type: application/json" \
//	  -d '{"query": "what is 5 + 3?"}'
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/agentrouter/agentrouter/core/router"
	"github.com/agentrouter/agentrouter/internal/config"
	"github.com/agentrouter/agentrouter/providers/ai"
	"github.com/agentrouter/agentrouter/providers/ai/middleware"
	"github.com/agentrouter/agentrouter/providers/ai/openai"
	"github.com/agentrouter/agentrouter/providers/openweather"
	"github.com/agentrouter/agentrouter/providers/tool"
	"github.com/agentrouter/agentrouter/providers/tool/arithmetic"
	"github.com/agentrouter/agentrouter/providers/tool/chat"
	"github.com/agentrouter/agentrouter/providers/tool/lookup"
	"github.com/agentrouter/agentrouter/server"
)

func main() {
	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting agent service",
		slog.String("name", cfg.AppName),
		slog.String("version", cfg.AppVersion),
		slog.String("completion_endpoint", cfg.CompletionBaseURL),
		slog.String("model", cfg.CompletionModel),
	)

	completer := buildCompleter(cfg, logger)

	var weather lookup.WeatherService
	if cfg.WeatherAPIKey != "" {
		weather = openweather.New(cfg.WeatherBaseURL, cfg.WeatherAPIKey)
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set; lookup tool will report the service as unconfigured")
	}

	registry := tool.NewRegistry(
		arithmetic.New(completer, logger),
		lookup.New(completer, weather, cfg.DefaultLocation, logger),
		chat.New(completer, logger),
	)
	dispatcher := router.New(completer, registry, logger)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(dispatcher, cfg.AppName, cfg.AppVersion, logger).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", slog.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// In-flight requests get a grace period to finish their pipelines.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}

// buildCompleter assembles the completion client: the OpenAI-compatible
// provider wrapped with the per-call timeout and structured logging.
func buildCompleter(cfg config.Config, logger *slog.Logger) ai.Completer {
	provider := openai.New(cfg.CompletionBaseURL, cfg.CompletionModel).
		WithAPIKey(cfg.CompletionAPIKey)

	return middleware.Chain(provider,
		middleware.WithLogging(logger),
		middleware.WithTimeout(cfg.Timeout),
	)
}
