package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Go-routine-4595/faultzero-sim/adapters/controller"
	"github.com/Go-routine-4595/faultzero-sim/adapters/metrics"
	"github.com/Go-routine-4595/faultzero-sim/adapters/report"
	"github.com/Go-routine-4595/faultzero-sim/model"
)

type ServerConfig struct {
	Addr           string   `yaml:"Addr"`
	AllowedOrigins []string `yaml:"AllowedOrigins"`
}

// Controller is the state container the API reads and drives.
type Controller interface {
	State() model.Telemetry
	Refreshing() bool
	ManualRefresh() model.Telemetry
	UpdateFocus(machineID int, metric model.Metric) error
	Watch(fn controller.Listener) func()
}

type Reporter interface {
	Generate(data report.Data, onProgress func(float64)) (report.Result, error)
}

type Server struct {
	conf    ServerConfig
	ctrl    Controller
	reports Reporter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewServer(conf ServerConfig, ctrl Controller, reports Reporter, m *metrics.Metrics, logger zerolog.Logger) *Server {
	if conf.Addr == "" {
		conf.Addr = ":8080"
	}
	if len(conf.AllowedOrigins) == 0 {
		conf.AllowedOrigins = []string{"*"}
	}
	return &Server{
		conf:    conf,
		ctrl:    ctrl,
		reports: reports,
		metrics: m,
		logger:  logger,
	}
}

// Handler returns the routes wrapped in CORS and access logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.Handle("/health", s.route("/health", s.health)).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.Handle("/ws", s.route("/ws", s.stream)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/state", s.route("/api/state", s.getState)).Methods(http.MethodGet)
	api.Handle("/refresh", s.route("/api/refresh", s.refresh)).Methods(http.MethodPost)
	api.Handle("/refreshing", s.route("/api/refreshing", s.refreshing)).Methods(http.MethodGet)
	api.Handle("/focus", s.route("/api/focus", s.updateFocus)).Methods(http.MethodPut)
	api.Handle("/machines", s.route("/api/machines", s.machines)).Methods(http.MethodGet)
	api.Handle("/reports", s.route("/api/reports", s.createReport)).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.conf.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.LoggingHandler(s.logger, cors(r))
}

func (s *Server) route(name string, fn http.HandlerFunc) http.Handler {
	return s.metrics.WrapHandler(name, fn)
}

// Start serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Start(ctx context.Context, wg *sync.WaitGroup) {
	srv := &http.Server{
		Addr:              s.conf.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		s.logger.Info().Str("addr", s.conf.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("http server stopped")
		}
	}()
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.logger.Info().Msg("Server: context received signal, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("http server shutdown")
		}
	}()
}
