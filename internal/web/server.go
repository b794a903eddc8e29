package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/teamtools/boardnotify/internal/jobs"
)

// Server exposes the operational endpoints: /healthz and /api/v1/status.
type Server struct {
	httpServer *http.Server
	metrics    *jobs.Metrics
	logger     *slog.Logger
	startedAt  time.Time

	requestMu     sync.Mutex
	requestCounts map[string]int
}

// NewServer builds the ops server listening on addr.
func NewServer(addr string, metrics *jobs.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		metrics:       metrics,
		logger:        logger,
		startedAt:     time.Now(),
		requestCounts: map[string]int{},
	}

	router := mux.NewRouter()
	router.Use(s.trackRequestCount)
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/status", s.handleStatus).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until Shutdown. Run it in its own goroutine.
func (s *Server) Start() {
	s.logger.Info("ops server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("ops server failed", "error", err.Error())
	}
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) trackRequestCount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if pathTemplate, err := route.GetPathTemplate(); err == nil {
				endpoint = pathTemplate
			}
		}
		s.requestMu.Lock()
		s.requestCounts[r.Method+" "+endpoint]++
		s.requestMu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) snapshotRequestCounts() map[string]int {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()
	counts := make(map[string]int, len(s.requestCounts))
	for endpoint, count := range s.requestCounts {
		counts[endpoint] = count
	}
	return counts
}

// HealthzResponse is the JSON payload for the lightweight /healthz endpoint.
type HealthzResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	response := HealthzResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to encode /healthz response", "error", err.Error())
	}
}

// StatusResponse reports per-job counters and request totals.
type StatusResponse struct {
	Uptime   string                   `json:"uptime"`
	Jobs     map[string]jobs.JobStats `json:"jobs"`
	Requests map[string]int           `json:"requests"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	response := StatusResponse{
		Uptime:   time.Since(s.startedAt).String(),
		Jobs:     s.metrics.Snapshot(),
		Requests: s.snapshotRequestCounts(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to encode /api/v1/status response", "error", err.Error())
	}
}
