// Observability HTTP server for metrics, health and profiling
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nainya/docvcs/internal/logger"
)

// StatsProvider reports what the health endpoint exposes
type StatsProvider interface {
	Users() []string
	Repos() []string
}

// healthReport is the body of /health
type healthReport struct {
	Status  string   `json:"status"`
	Service string   `json:"service"`
	Users   int      `json:"users"`
	Repos   int      `json:"repos"`
	Names   []string `json:"repo_names,omitempty"`
}

// ObservabilityServer exposes a docvcs session over HTTP while the shell runs
type ObservabilityServer struct {
	srv *http.Server
	log *logger.Logger
}

// NewObservabilityServer serves gatherer and stats on port
func NewObservabilityServer(port int, gatherer prometheus.Gatherer, stats StatsProvider, log *logger.Logger) *ObservabilityServer {
	if log == nil {
		log = logger.NewNop()
	}

	return &ObservabilityServer{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewHandler(gatherer, stats),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		log: log.WithFields(map[string]interface{}{"component": "observability"}),
	}
}

// NewHandler routes /metrics, /health, /ready and /debug/pprof
func NewHandler(gatherer prometheus.Gatherer, stats StatsProvider) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", healthHandler(stats))
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ready"})
	})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}

func healthHandler(stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		repos := stats.Repos()
		writeJSON(w, healthReport{
			Status:  "healthy",
			Service: "docvcs",
			Users:   len(stats.Users()),
			Repos:   len(repos),
			Names:   repos,
		})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Start blocks serving requests until Shutdown
func (o *ObservabilityServer) Start() error {
	o.log.Info("Observability endpoints up").
		Str("metrics", "http://localhost"+o.srv.Addr+"/metrics").
		Str("health", "http://localhost"+o.srv.Addr+"/health").
		Send()

	err := o.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("observability server on %s: %w", o.srv.Addr, err)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends
func (o *ObservabilityServer) Shutdown(ctx context.Context) error {
	o.log.Info("Observability endpoints down").Send()
	return o.srv.Shutdown(ctx)
}
