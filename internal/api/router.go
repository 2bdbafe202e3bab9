// Package api exposes the HTTP read surface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/health"
	"github.com/yourusername/live-odds/internal/tracing"
)

// RouterConfig selects optional routes and CORS
type RouterConfig struct {
	AllowedOrigins []string
	MetricsPath    string
	MetricsHandler http.Handler
	StreamHandler  http.HandlerFunc
	ServiceName    string
}

// NewRouter wires every route onto a chi router
func NewRouter(cfg RouterConfig, h *Handler, checker *health.Checker, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(tracing.Middleware(cfg.ServiceName))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.Root)
	r.Get("/live/odds", h.LiveOdds)
	r.Get("/matches/all", h.AllMatches)

	if cfg.StreamHandler != nil {
		r.Get("/live/stream", cfg.StreamHandler)
	}

	if checker != nil {
		r.Get("/health", checker.HandleHealth)
		r.Get("/live", checker.HandleLive)
		r.Get("/ready", checker.HandleReady)
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.MetricsHandler)
	}

	return r
}

func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	entry := logger.WithField("component", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			entry.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": chimiddleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
