package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/offerlab/offerdb/internal/infra/metrics"
	"github.com/offerlab/offerdb/internal/repository"
)

type Server struct {
	srv *http.Server
}

func New(addr string, exposeMetrics bool, repo *repository.Repository, log zerolog.Logger) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(exposeMetrics, repo, log),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// NewRouter builds the handler tree: /health, optionally /metrics, and the JSON API under /api.
func NewRouter(exposeMetrics bool, repo *repository.Repository, log zerolog.Logger) http.Handler {
	h := &handlers{repo: repo}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(access))

	r.Get("/health", h.health)
	if exposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", h.listPackages)
			r.Get("/groups", h.packageGroups)
			r.Get("/{id}", h.getPackage)
			r.Get("/{id}/price", h.packagePrice)
		})
		r.Route("/offers/{id}", func(r chi.Router) {
			r.Get("/", h.getOffer)
			r.Get("/lines", h.offerLines)
			r.Put("/discount", h.updateDiscount)
			r.Put("/status", h.updateStatus)
			r.Put("/lines/{packageID}", h.recalculateLine)
		})
		r.Get("/projects", h.projectIdentifiers)
		r.Get("/projects/{ref}", h.getProject)
		r.Get("/persons/address", h.personAddress)
	})
	return r
}

// access logs every request and counts it by route pattern and status code.
func access(r *http.Request, status, size int, d time.Duration) {
	route := "unmatched"
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("route", route).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
