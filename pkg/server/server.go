package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opscart/kube-trim/pkg/recommender"
	"github.com/opscart/kube-trim/pkg/store"
)

//go:embed report.html
var reportPage embed.FS

// Server exposes the collected state over HTTP: a human-readable report
// page, the recommendation report as JSON, and the raw sample tables.
// Route names match what the service has always served: /metrics is the
// raw sample dump, Prometheus self-metrics live under /prometheus.
type Server struct {
	store *store.MetricsStore
	http  *http.Server
}

func New(addr string, st *store.MetricsStore) *Server {
	s := &Server{store: st}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleRawMetrics).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/prometheus", promhttp.Handler()).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := reportPage.ReadFile("report.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := recommender.ComputeReport(s.store.PodSamples(), s.store)
	writeJSON(w, report)
}

func (s *Server) handleRawMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Raw())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[WARN] failed to encode response: %v\n", err)
	}
}
