// Package server assembles the HTTP routes.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prudhvinik1/foodbridge/internal/handlers"
	"github.com/prudhvinik1/foodbridge/internal/realtime"
	"github.com/prudhvinik1/foodbridge/internal/services"
)

type Deps struct {
	Auth        *services.AuthService
	Listings    *services.ListingService
	Suggestions *services.SuggestionService
	Hub         *realtime.Hub
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoints
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if d.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Mount("/api/auth", handlers.NewAuthHandler(d.Auth, d.Logger).Routes())
	router.Mount("/api/listings", handlers.NewListingHandler(d.Listings, d.Auth, d.Logger).Routes())
	router.Mount("/api/ai", handlers.NewAIHandler(d.Suggestions, d.Logger).Routes())

	router.Handle("/ws", d.Hub)

	return router
}
