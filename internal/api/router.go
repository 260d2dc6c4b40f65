package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/swisspair/pairing/internal/api/handlers"
	apimw "github.com/swisspair/pairing/internal/api/middleware"
	"github.com/swisspair/pairing/internal/metrics"
	"github.com/swisspair/pairing/internal/service"
)

// NewRouter builds the pairing service's HTTP surface, grounded on
// NewRouter in the teacher's internal/api/router.go.
func NewRouter(svc service.PairingService) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:4200", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	pairingHandler := handlers.NewPairingHandler(svc)

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/tournaments/{tournamentId}/rounds", func(r chi.Router) {
		r.Get("/{round}", pairingHandler.GetRound)
		r.With(apimw.Auth).Post("/next", pairingHandler.ComputeNext)
	})

	return r
}
