package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/njern/bodyparse"
	"github.com/njern/bodyparse/internal/config"
)

// newRouter wires the echo, health and metrics endpoints.
func newRouter(cfg *config.Config, logger logrus.FieldLogger, metrics *bodyparse.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, cfg.MetricsPath, metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return bodyparse.Middleware(next,
				bodyparse.WithOptions(cfg.Parser),
				bodyparse.WithLogger(logger),
				bodyparse.WithMetrics(metrics),
			)
		})
		r.Post("/echo", echo(logger))
	})

	return r
}

// echo answers with the parsed body encoded as JSON.
func echo(logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := bodyparse.FromContext(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.WithError(err).Warn("Failed to write echo response")
		}
	}
}
