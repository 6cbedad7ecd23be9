// Package api serves the dashboard views over HTTP for a browser frontend.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/logiops360/logiops-cli/internal/bus"
	"github.com/logiops360/logiops-cli/internal/dashboard"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/session"
)

// Deps are the components the server exposes.
type Deps struct {
	Board    *dashboard.Board
	Sessions *session.Manager
	// Bus, when set, is observed for the broadcast counter.
	Bus         bus.Subscriber
	CORSOrigins []string
	// Registry defaults to a fresh registry.
	Registry *prometheus.Registry
}

// Server is the HTTP surface. The board is shared by every request, so the
// server acts for the single signed-in user.
type Server struct {
	board    *dashboard.Board
	sessions *session.Manager
	metrics  *Metrics
	registry *prometheus.Registry
	origins  []string
	unsubs   []func()
}

// New creates a Server.
func New(d Deps) *Server {
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		board:    d.Board,
		sessions: d.Sessions,
		metrics:  NewMetrics(reg),
		registry: reg,
		origins:  d.CORSOrigins,
	}
	if d.Bus != nil {
		for _, ch := range []string{model.ChannelDelayList, model.ChannelAnomalyList} {
			s.unsubs = append(s.unsubs, d.Bus.Subscribe(ch, func(any) {
				s.metrics.broadcasts.WithLabelValues(ch).Inc()
			}))
		}
	}
	return s
}

// Close detaches the server's bus listeners.
func (s *Server) Close() {
	for _, u := range s.unsubs {
		u()
	}
	s.unsubs = nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Post("/login", s.handleLogin)
			r.Post("/signup", s.handleSignup)
			r.Delete("/", s.handleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/dashboard/{profile}", s.handleDashboard)

			r.Get("/delay", s.handleDelayList)
			r.Post("/delay/expand", s.handleDelayExpand)
			r.Get("/delay/{shipmentID}", s.handleDelayDetail)

			r.Get("/anomalies", s.handleAnomalyList)
			r.Post("/anomalies/expand", s.handleAnomalyExpand)
			r.Get("/anomalies/{shipmentID}", s.handleAnomalyDetail)

			r.Get("/kpi", s.handleKPI)

			r.Get("/eta/options", s.handleETAOptions)
			r.Post("/eta/predict", s.handleETAPredict)
			r.Get("/eta/{shipmentID}", s.handleETAByID)

			r.Get("/carrier/options", s.handleCarrierOptions)
			r.Post("/carrier/recommend", s.handleCarrierRecommend)
		})
	})
	return r
}

// instrument records request metrics and logs each request at debug.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.observe(route, r.Method, status, elapsed)

		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requireToken rejects requests while nobody is signed in.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.board.Token() == "" {
			writeError(w, session.ErrNoSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}
