// Package metrics exposes Prometheus counters for registry operations and
// a standalone metrics HTTP server.
package metrics

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var infoOnce sync.Once

var (
	// CreationsTotal counts successful creations.
	CreationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_creations_total",
		Help: "Number of artifacts successfully created",
	})

	// CreationFailuresTotal counts failed creation attempts by reason.
	CreationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_creation_failures_total",
		Help: "Number of failed creation attempts",
	}, []string{"reason"})

	// AuthFailuresTotal counts rejected admin operations.
	AuthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_auth_failures_total",
		Help: "Number of operations rejected by the access-control checks",
	})

	// OwnerTransfersTotal counts completed ownership handshakes.
	OwnerTransfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_owner_transfers_total",
		Help: "Number of completed two-step ownership transfers",
	})

	// ActorRotationsTotal counts allowed-actor changes.
	ActorRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_actor_rotations_total",
		Help: "Number of allowed-actor changes",
	})
)

// MetricsServer serves the Prometheus scrape endpoint on its own listener.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given listen address. The service
// name is exported as a registry_info label so dashboards can tell
// instances apart.
func New(name, listenAddr string) (*MetricsServer, error) {
	infoOnce.Do(func() {
		promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "registry_info",
			Help:        "Static service information",
			ConstLabels: prometheus.Labels{"service": name},
		}).Set(1)
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:    listenAddr,
			Handler: mux,
		},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
