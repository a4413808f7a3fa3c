package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StationLookup returns an archived station report.
type StationLookup interface {
	Station(ctx context.Context, id string) (domain.StationReport, error)
}

// Server exposes health, readiness, metrics, and archived station endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, and /metrics routes.
// When stations is non-nil it also serves GET /stations/{id}.
func NewServer(addr string, ready sharedobs.ReadinessChecker, stations StationLookup, logger *slog.Logger) *Server {
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
	mux.Handle("GET /metrics", promhttp.Handler())
	if stations != nil {
		mux.HandleFunc("GET /stations/{id}", s.handleStation(stations))
	}

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

func (s *Server) handleStation(stations StationLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := domain.StationIDFromName(r.PathValue("id"))
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid station id"})
			return
		}

		report, err := stations.Station(r.Context(), id)
		switch {
		case errors.Is(err, domain.ErrStationNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
		case err != nil:
			s.logger.Error("station lookup failed", "error", err, "station_id", id)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		default:
			writeJSON(w, http.StatusOK, report)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
