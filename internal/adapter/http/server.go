package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-seeder/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Summarizer reports the record counts held by the station store.
type Summarizer interface {
	Summary(ctx context.Context) (domain.Summary, error)
}

// Server exposes health, readiness, metrics, and store summary endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /summary routes. Metrics are served from gatherer.
func NewServer(addr string, ready sharedobs.ReadinessChecker, summary Summarizer, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /summary", s.handleSummary(summary))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type summaryResponse struct {
	Stations         int64      `json:"stations"`
	ActiveStations   int64      `json:"active_stations"`
	StationsWithData int64      `json:"stations_with_data"`
	Observations     int64      `json:"observations"`
	Fires            int64      `json:"fires"`
	OldestStation    *time.Time `json:"oldest_station"`
	NewestStation    *time.Time `json:"newest_station"`
	FirstObservation *time.Time `json:"first_observation"`
	LastObservation  *time.Time `json:"last_observation"`
}

func (s *Server) handleSummary(summary Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sum, err := summary.Summary(ctx)
		if err != nil {
			s.logger.Error("store summary failed", "error", err)
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, summaryResponse{
			Stations:         sum.Stations,
			ActiveStations:   sum.ActiveStations,
			StationsWithData: sum.StationsWithData,
			Observations:     sum.Observations,
			Fires:            sum.Fires,
			OldestStation:    sum.OldestStation,
			NewestStation:    sum.NewestStation,
			FirstObservation: sum.FirstObservation,
			LastObservation:  sum.LastObservation,
		})
	}
}
