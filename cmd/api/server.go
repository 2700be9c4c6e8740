package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/bryanwahyu/esr-tracker/src/app/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/app/tracker"
)

type ServerConfig struct {
	Logger     *zap.Logger
	Store      *tracker.Store
	Scoreboard *scoreboard.Service
	// AdminEnabled mounts the /v1/admin mutation routes.
	AdminEnabled bool
	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Server wires HTTP endpoints to the tracker store and scoreboard with observability instrumentation.
type Server struct {
	cfg            ServerConfig
	instance       string
	router         *mux.Router
	handler        http.Handler
	httpMetrics    *prometheus.HistogramVec
	requestCounter *prometheus.CounterVec
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	// Revisions restart at zero with each process, so tags carry a per-process id.
	srv := &Server{cfg: cfg, instance: generateCorrelationID()}
	if err := srv.initMetrics(); err != nil {
		return nil, err
	}
	srv.buildRouter()
	return srv, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) initMetrics() error {
	s.httpMetrics = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "esr",
		Subsystem: "http",
		Name:      "request_latency_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	s.requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "esr",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route",
	}, []string{"route", "method", "code"})
	for _, c := range []prometheus.Collector{s.httpMetrics, s.requestCounter} {
		if err := s.cfg.Registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) buildRouter() {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.correlationMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)

	route := func(router *mux.Router, path, name string, h http.HandlerFunc, methods ...string) {
		router.Handle(path, otelhttp.NewHandler(h, name)).Methods(methods...)
	}
	cached := func(h http.HandlerFunc) http.HandlerFunc {
		return s.revisionETag(h).ServeHTTP
	}

	api := r.PathPrefix("/v1").Subrouter()
	route(api, "/teams", "ListTeams", cached(s.handleListTeams), http.MethodGet)
	route(api, "/games", "ListGames", cached(s.handleListGames), http.MethodGet)
	route(api, "/matches", "ListMatches", cached(s.handleListMatches), http.MethodGet)
	route(api, "/scoreboard/recent", "RecentMatches", cached(s.handleRecentMatches), http.MethodGet)
	route(api, "/scoreboard/overall", "OverallStandings", cached(s.handleOverallStandings), http.MethodGet)
	route(api, "/scoreboard/games", "PlayedGames", cached(s.handlePlayedGames), http.MethodGet)
	route(api, "/scoreboard/games/{title}", "GameStandings", cached(s.handleGameStandings), http.MethodGet)
	route(api, "/scoreboard/export.xlsx", "ExportScoreboard", cached(s.handleExport), http.MethodGet)

	if s.cfg.AdminEnabled {
		admin := api.PathPrefix("/admin").Subrouter()
		route(admin, "/teams", "AddTeam", s.handleAddTeam, http.MethodPost)
		route(admin, "/teams/{name}", "RemoveTeam", s.handleRemoveTeam, http.MethodDelete)
		route(admin, "/games", "AddGame", s.handleAddGame, http.MethodPost)
		route(admin, "/games/{title}", "RemoveGame", s.handleRemoveGame, http.MethodDelete)
		route(admin, "/matches", "RecordMatch", s.handleRecordMatch, http.MethodPost)
	}

	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router = r

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.cfg.Logger)),
		handlers.PrintRecoveryStack(true),
	)
	s.handler = recovery(gzhttp.GzipHandler(r))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.cfg.Logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
			zap.Duration("duration", m.Duration),
			zap.String("request_id", correlationIDFromContext(r.Context())),
		)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		route := mux.CurrentRoute(r)
		routeName := "unknown"
		if route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				routeName = tmpl
			}
		}
		labels := prometheus.Labels{"route": routeName, "method": r.Method, "code": strconv.Itoa(m.Code)}
		s.httpMetrics.With(labels).Observe(m.Duration.Seconds())
		s.requestCounter.With(labels).Inc()
	})
}
