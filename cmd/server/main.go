package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prudhvinik1/foodbridge/internal/ai"
	"github.com/prudhvinik1/foodbridge/internal/app"
	"github.com/prudhvinik1/foodbridge/internal/config"
	"github.com/prudhvinik1/foodbridge/internal/notify"
	"github.com/prudhvinik1/foodbridge/internal/obs"
	"github.com/prudhvinik1/foodbridge/internal/presence"
	"github.com/prudhvinik1/foodbridge/internal/realtime"
	"github.com/prudhvinik1/foodbridge/internal/server"
	"github.com/prudhvinik1/foodbridge/internal/services"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Initialize stores
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	// Presence and notifications live for the whole process
	registry := presence.NewRegistry()
	defer registry.Close()
	dispatcher := notify.NewDispatcher(registry, cfg.EventBuffer, logger, metrics)
	hub := realtime.NewHub(registry, cfg.CORSOrigins, logger, metrics)

	var generator services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create gemini client: %v", err)
		}
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI suggestions disabled")
	}

	router := server.NewRouter(server.Deps{
		Auth:        services.NewAuthService(stores.Users, stores.Sessions, cfg.JWTSecret, cfg.JWTExpiry),
		Listings:    services.NewListingService(stores.Listings, dispatcher, logger, metrics),
		Suggestions: services.NewSuggestionService(generator, logger),
		Hub:         hub,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting server", "port", cfg.ServerPort, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		hub.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}

	logger.Info("server stopped gracefully")
}
