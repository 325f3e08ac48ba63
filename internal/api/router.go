package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter creates the chi router with all API routes mounted.
func NewRouter(svc Aggregator, log *logrus.Logger) http.Handler {
	h := &Handlers{
		svc: svc,
		log: log.WithField("component", "api"),
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/settlements/rollup", h.GetRollup)
		r.Get("/settlements/calendar", h.GetCalendar)
	})

	return r
}
