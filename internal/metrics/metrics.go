// Package metrics provides Prometheus instrumentation for musicstats.
//
// Metrics are registered with the default registry through promauto and are
// exposed by the web server on /metrics. All names carry the "musicstats_"
// prefix.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Library metrics
var (
	LibraryLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicstats_library_loads_total",
			Help: "Total number of library file loads",
		},
		[]string{"status"},
	)

	LibraryLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "musicstats_library_load_duration_seconds",
			Help:    "Time spent reading and parsing the library file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	LibraryTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "musicstats_library_tracks",
			Help: "Number of tracks in the most recently loaded library",
		},
	)

	EnrichedTracksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicstats_enriched_tracks_total",
			Help: "Tracks inspected for file-tag fallback, by outcome",
		},
		[]string{"outcome"}, // "filled", "unchanged", "failed"
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicstats_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "musicstats_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "musicstats_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)
)

// ObserveLibraryLoad records one library load. tracks is ignored on failure.
func ObserveLibraryLoad(d time.Duration, tracks int, err error) {
	LibraryLoadDuration.Observe(d.Seconds())
	if err != nil {
		LibraryLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	LibraryLoadsTotal.WithLabelValues("success").Inc()
	LibraryTracks.Set(float64(tracks))
}
